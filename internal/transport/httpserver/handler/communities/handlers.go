package communities

import (
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
	commonhandler "coinvest-go/internal/transport/httpserver/handler/common"
	"coinvest-go/internal/transport/httpserver/middleware"
	"coinvest-go/pkg/logger"
)

type Handlers struct {
	Communities *communitydomain.Service
	log         logger.Logger
}

func New(communities *communitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Communities: communities,
		log:         log,
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

// decodeRequest reads a JSON body into dst and validates it. It writes the
// 400 response itself and reports whether the handler may continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := commonhandler.DecodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if err := commonhandler.ValidateStruct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return "", false
	}
	return user.ID, true
}
