package server

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxDisplayNameLength = 48
	maxSessionNameLength = 64
	maxGuestIDLength     = 64
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
			return validDisplayName(fl.Field().String())
		})
		_ = engine.RegisterValidation("guestid", func(fl validator.FieldLevel) bool {
			return validGuestID(fl.Field().String())
		})
		_ = engine.RegisterValidation("joincode", func(fl validator.FieldLevel) bool {
			return game.ValidJoinCode(game.NormalizeJoinCode(fl.Field().String()))
		})
	})
}

func validDisplayName(name string) bool {
	trimmed := normalizeText(name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxDisplayNameLength {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// validGuestID accepts the opaque ids browsers mint for guests: uuids or
// similar tokens made of letters, digits, '-' and '_'.
func validGuestID(id string) bool {
	if id == "" || len(id) > maxGuestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
