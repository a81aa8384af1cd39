package act

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simman/go-gatekeeper/internal/rules"
)

func evalAction(t *testing.T, rule rules.Rule, next rules.Chain) (rules.Result, *httptest.ResponseRecorder, error) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil)
	if next == nil {
		next = rules.ChainFunc(func(http.ResponseWriter, *http.Request) error { return nil })
	}
	res, err := rules.NewInvocation().Evaluate(rule, w, r, next)
	return res, w, err
}

func TestRespond_WritesStatusAndTerminates(t *testing.T) {
	res, w, err := evalAction(t, Respond(http.StatusForbidden, "blocked"), nil)
	require.NoError(t, err)
	assert.Equal(t, rules.Terminate, res)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "blocked", body["error"])
	assert.Equal(t, "/api/users", body["path"])
}

func TestForward_InvokesChainAndTerminates(t *testing.T) {
	invoked := 0
	next := rules.ChainFunc(func(http.ResponseWriter, *http.Request) error {
		invoked++
		return nil
	})

	res, _, err := evalAction(t, Forward, next)
	require.NoError(t, err)
	assert.Equal(t, rules.Terminate, res)
	assert.Equal(t, 1, invoked)
}

func TestForward_PropagatesChainError(t *testing.T) {
	next := rules.ChainFunc(func(http.ResponseWriter, *http.Request) error {
		return assert.AnError
	})

	res, _, err := evalAction(t, Forward, next)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, rules.Terminate, res)
}

func TestLog_Continues(t *testing.T) {
	res, _, err := evalAction(t, Log(zerolog.InfoLevel, "seen"), nil)
	require.NoError(t, err)
	assert.Equal(t, rules.Continue, res)
}

func TestSetHeader_SetsAndContinues(t *testing.T) {
	res, w, err := evalAction(t, SetHeader("X-Filtered", "1"), nil)
	require.NoError(t, err)
	assert.Equal(t, rules.Continue, res)
	assert.Equal(t, "1", w.Header().Get("X-Filtered"))
}

func TestDropCookie_ExpiresCookieAndContinues(t *testing.T) {
	res, w, err := evalAction(t, DropCookie("session"), nil)
	require.NoError(t, err)
	assert.Equal(t, rules.Continue, res)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
