package handler

import (
	"errors"
	"net/http"

	"workforce-backend/internal/server/authctx"
)

var errForeignRecord = errors.New("not allowed to access another employee's records")

// resolveEmployeeID picks whose records a request targets. Employees are pinned to
// themselves; management may name anyone through the given query parameter.
func resolveEmployeeID(r *http.Request, user authctx.CurrentUser, key string) (int64, error) {
	requested, err := parseIDQuery(r, key)
	if err != nil {
		return 0, err
	}
	if requested == nil || *requested == user.ID {
		return user.ID, nil
	}
	if !user.Role.IsManagement() {
		return 0, errForeignRecord
	}
	return *requested, nil
}

func writeScopeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errForeignRecord) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func currentUser(w http.ResponseWriter, r *http.Request) (authctx.CurrentUser, bool) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return authctx.CurrentUser{}, false
	}
	return *user, true
}
