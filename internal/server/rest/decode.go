package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/requestctx"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", common.ErrorValidation, err)
	}
	return nil
}

// caller returns the identity set by authGate. Handlers behind the gate
// always have one.
func caller(r *http.Request) (requestctx.Identity, error) {
	id, ok := requestctx.IdentityFromContext(r.Context())
	if !ok {
		return requestctx.Identity{}, common.ErrorUnauthorized
	}
	return id, nil
}
