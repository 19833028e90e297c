package comedor

import (
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// PasswordMinLength is the shortest accepted password.
const PasswordMinLength = 6

// CredentialsShape is the comparable form of the login dialog.
type CredentialsShape struct {
	Username string
	Password string
}

// LoginForm collects credentials. Passwords are compared untrimmed.
func LoginForm() form.Definition[Credentials, CredentialsShape] {
	return form.Definition[Credentials, CredentialsShape]{
		Name: "login",
		Schema: validation.NewSchema(
			validation.Field{Name: "username", Label: "Usuario", Rules: []validation.Rule{validation.Required()}},
			validation.Field{Name: "password", Label: "Contraseña", Rules: []validation.Rule{
				validation.Required(),
				validation.MinLength(PasswordMinLength),
			}},
		),
		Values: func(c Credentials) form.Values {
			return form.Values{"username": c.Username, "password": c.Password}
		},
		Shape: func(v form.Values) CredentialsShape {
			return CredentialsShape{Username: form.Text(v.Get("username")), Password: v.Get("password")}
		},
		Build: func(_ Credentials, v form.Values) (Credentials, error) {
			return Credentials{Username: form.Text(v.Get("username")), Password: v.Get("password")}, nil
		},
		Messages: form.Messages{
			NoChanges:    "Ingresa tu usuario y contraseña.",
			Created:      "Sesión iniciada.",
			CreateFailed: "Usuario o contraseña incorrectos.",
		},
	}
}

// RegistrationShape is the comparable form of the sign-up dialog.
type RegistrationShape struct {
	Username string
	Name     string
	Mail     string
	Password string
}

// RegisterForm collects a new console account.
func RegisterForm() form.Definition[Registration, RegistrationShape] {
	return form.Definition[Registration, RegistrationShape]{
		Name: "register",
		Schema: validation.NewSchema(
			validation.Field{Name: "username", Label: "Usuario", Rules: []validation.Rule{
				validation.Required(),
				validation.MaxLength(50),
			}},
			validation.Field{Name: "name", Label: "Nombre", Rules: []validation.Rule{
				validation.Required(),
				validation.Letters(),
			}},
			validation.Field{Name: "mail", Label: "Correo", Rules: []validation.Rule{
				validation.Required(),
				validation.Email(),
			}},
			validation.Field{Name: "password", Label: "Contraseña", Rules: []validation.Rule{
				validation.Required(),
				validation.MinLength(PasswordMinLength),
			}},
		),
		Filters:   map[string]form.InputFilter{"name": form.LettersOnly},
		WireNames: map[string]string{"email": "mail"},
		Values: func(r Registration) form.Values {
			return form.Values{"username": r.Username, "name": r.Name, "mail": r.Mail, "password": r.Password}
		},
		Shape: func(v form.Values) RegistrationShape {
			return RegistrationShape{
				Username: form.Text(v.Get("username")),
				Name:     form.Text(v.Get("name")),
				Mail:     form.Text(v.Get("mail")),
				Password: v.Get("password"),
			}
		},
		Build: func(_ Registration, v form.Values) (Registration, error) {
			return Registration{
				Username: form.Text(v.Get("username")),
				Name:     form.Text(v.Get("name")),
				Mail:     form.Text(v.Get("mail")),
				Password: v.Get("password"),
				Enabled:  true,
			}, nil
		},
		Messages: form.Messages{
			NoChanges:    "Completa el formulario de registro.",
			Created:      "Usuario registrado. Ya puedes iniciar sesión.",
			CreateFailed: "No se pudo registrar el usuario.",
			Conflict:     "El usuario ya existe.",
		},
	}
}
