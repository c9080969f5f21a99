package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/requestctx"
)

// actorFrom returns the caller placed in the context by AuthRequired. It
// writes a 401 and returns false when there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := requestctx.Actor(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// decodeOptionalJSON decodes r.Body into dst. An empty body leaves dst
// untouched.
func decodeOptionalJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
