package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz     = "q"
	actionSettings = "settings"
	actionStart    = "start"
)

// Quiz sub-actions.
const (
	quizPick   = "p" // pick or toggle an option
	quizSubmit = "s" // submit a multi-select draft
	quizNext   = "n"
	quizPrev   = "b"
	quizMark   = "m"
	quizLang   = "l"
	quizFinish = "f"
)

// Settings sub-actions.
const (
	settingsMenu     = "menu"
	settingsLanguage = "lang"
	settingsCert     = "cert"
	settingsQuizMode = "mode"
)

// tokenLength is the number of session id characters carried in quiz callbacks.
// Telegram limits callback data to 64 bytes.
const tokenLength = 8

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 || parts[0] == "" {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// quizCallback is a decoded quiz action bound to one question of one session.
type quizCallback struct {
	Sub   string
	Token string // session token, see sessionToken
	Index int    // question position the keyboard was rendered for
	Label string // option label, set for quizPick only
}

func sessionToken(sessionID string) string {
	if len(sessionID) > tokenLength {
		return sessionID[:tokenLength]
	}
	return sessionID
}

// buildQuizCallback builds callback data for a quiz action.
func buildQuizCallback(sub, sessionID string, index int, label ...string) string {
	params := []string{sub, sessionToken(sessionID), strconv.Itoa(index)}
	params = append(params, label...)
	return callbackData{
		Action: actionQuiz,
		Params: params,
	}.encode()
}

// parseQuizCallback validates the params of a quiz callback.
func parseQuizCallback(cd callbackData) (quizCallback, bool) {
	if cd.Action != actionQuiz || len(cd.Params) < 3 {
		return quizCallback{}, false
	}

	idx, err := strconv.Atoi(cd.Params[2])
	if err != nil || idx < 0 {
		return quizCallback{}, false
	}

	qc := quizCallback{
		Sub:   cd.Params[0],
		Token: cd.Params[1],
		Index: idx,
	}

	switch qc.Sub {
	case quizPick:
		if len(cd.Params) != 4 || cd.Params[3] == "" {
			return quizCallback{}, false
		}
		qc.Label = cd.Params[3]
	case quizSubmit, quizNext, quizPrev, quizMark, quizLang, quizFinish:
		if len(cd.Params) != 3 {
			return quizCallback{}, false
		}
	default:
		return quizCallback{}, false
	}

	return qc, true
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}

// buildStartCallback builds callback data for starting a new quiz in the given mode.
func buildStartCallback(mode string) string {
	return callbackData{
		Action: actionStart,
		Params: []string{mode},
	}.encode()
}
