package loginflow

import (
	"fmt"
	"strings"
)

// ValidateInput checks the local constraints on the login form: the
// identifier must be a well-formed email and the secret must meet the
// minimum length. Run before any network call.
func ValidateInput(identifier, secret string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fmt.Errorf("el email es obligatorio")
	}
	at := strings.Index(identifier, "@")
	if at <= 0 || at == len(identifier)-1 || !strings.Contains(identifier[at:], ".") {
		return fmt.Errorf("el email no es válido")
	}
	if secret == "" {
		return fmt.Errorf("la contraseña es obligatoria")
	}
	if len(secret) < minSecretLength {
		return fmt.Errorf("la contraseña debe tener al menos %d caracteres", minSecretLength)
	}
	return nil
}
