package sinput

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gordian-engine/gsegtree/smulti"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidRequest is wrapped by every error returned from a Validate method.
var ErrInvalidRequest = errors.New("invalid request")

// BuildRequest carries the input array for a new engine.
type BuildRequest struct {
	Values []int64 `json:"values" validate:"required,min=1"`
}

// Validate checks the request shape.
// maxLen limits the input length; zero means unlimited.
func (r BuildRequest) Validate(maxLen int) error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: build: %w", ErrInvalidRequest, err)
	}
	if maxLen > 0 && len(r.Values) > maxLen {
		return fmt.Errorf(
			"%w: build: %d values exceeds limit of %d", ErrInvalidRequest, len(r.Values), maxLen,
		)
	}
	return nil
}

// QueryRequest is a single range query.
// Hi is only checked against Lo here;
// the engine checks it against the input length.
type QueryRequest struct {
	Lo    int      `json:"lo" validate:"gte=0"`
	Hi    int      `json:"hi" validate:"gtfield=Lo"`
	Kinds []string `json:"kinds" validate:"required,min=1,dive,oneof=min max sum"`
}

// Validate checks the request shape.
func (r QueryRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: query: %w", ErrInvalidRequest, err)
	}
	return nil
}

// KindSet returns the requested kinds as a typed set.
// It is only meaningful after Validate succeeds.
func (r QueryRequest) KindSet() (smulti.Kinds, error) {
	var ks smulti.Kinds
	for _, name := range r.Kinds {
		k, err := smulti.ParseKind(name)
		if err != nil {
			return 0, err
		}
		ks = ks.With(k)
	}
	if ks == 0 {
		return 0, smulti.ErrNoKinds
	}
	return ks, nil
}

// UpdateRequest is a single point update.
type UpdateRequest struct {
	Position int   `json:"position" validate:"gte=0"`
	Value    int64 `json:"value"`
}

// Validate checks the request shape.
func (r UpdateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: update: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Assignment converts the request into an engine assignment.
func (r UpdateRequest) Assignment() smulti.Assignment {
	return smulti.Assignment{Pos: r.Position, Value: r.Value}
}
