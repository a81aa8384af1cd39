package act

import (
	"net/http"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// SetHeader sets a response header and continues to the next rule.
func SetHeader(key, value string) rules.Rule {
	return rules.ActionFunc(func(_ rules.Evaluator, w http.ResponseWriter, _ *http.Request, _ rules.Chain) (rules.Result, error) {
		w.Header().Set(key, value)
		return rules.Continue, nil
	})
}

// DropCookie expires the named cookie on the client, ending whatever
// session it carried, and continues to the next rule.
func DropCookie(name string) rules.Rule {
	return rules.ActionFunc(func(_ rules.Evaluator, w http.ResponseWriter, _ *http.Request, _ rules.Chain) (rules.Result, error) {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		return rules.Continue, nil
	})
}
