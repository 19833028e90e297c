package console

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/form"
	"github.com/goliatone/go-micomedor/pkg/session"
)

// welcome is the menu shown without a session. It reports whether the user
// chose to quit.
func (c *Console) welcome(ctx context.Context) (bool, error) {
	options := []string{MenuLogin, MenuRegister, MenuQuit}
	idx, err := c.driver.Select(ctx, prompt.SelectConfig{
		Message: "Bienvenido a MiComedor",
		Options: options,
	})
	if err != nil {
		return false, err
	}
	switch options[idx] {
	case MenuLogin:
		_, err = c.Login(ctx)
	case MenuRegister:
		_, err = c.Register(ctx)
	default:
		return true, nil
	}
	return false, err
}

// Login runs the login dialog and stores the session on success.
func (c *Console) Login(ctx context.Context) (bool, error) {
	d := dialog[comedor.Credentials, comedor.CredentialsShape]{
		def:    comedor.LoginForm(),
		secret: map[string]bool{"password": true},
		public: true,
		submit: func(ctx context.Context, _ form.Mode, cred comedor.Credentials) (comedor.Credentials, error) {
			user, err := session.Login(ctx, c.client, c.store, cred.Username, cred.Password)
			if err != nil {
				return cred, err
			}
			c.logger.Info("login", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
			return comedor.Credentials{Username: user.Username}, nil
		},
	}
	return d.run(ctx, c, form.ModeCreate, comedor.Credentials{})
}

// Register runs the sign-up dialog. It never logs the user in.
func (c *Console) Register(ctx context.Context) (bool, error) {
	d := dialog[comedor.Registration, comedor.RegistrationShape]{
		def:     comedor.RegisterForm(),
		secret:  map[string]bool{"password": true},
		public:  true,
		confirm: true,
		submit: func(ctx context.Context, _ form.Mode, reg comedor.Registration) (comedor.Registration, error) {
			if err := c.client.Register(ctx, reg); err != nil {
				return reg, err
			}
			c.logger.Info("register", zap.String("username", strings.TrimSpace(reg.Username)))
			reg.Password = ""
			return reg, nil
		},
	}
	return d.run(ctx, c, form.ModeCreate, comedor.Registration{})
}
