package main

import (
	"os"

	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/service"
	"indrhi-inventory/pkg/config"
	"indrhi-inventory/pkg/database"
	applog "indrhi-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "reset-password",
		Usage: "reset a user's password and end their open sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "admin", Usage: "username or email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Value: "admin123", Usage: "new password"},
		},
		Action: resetPassword,
	}

	if err := app.Run(os.Args); err != nil {
		applog.Get().Fatal(err)
	}
}

func resetPassword(c *cli.Context) error {
	login := c.String("user")
	newPassword := c.String("password")
	if len(newPassword) < 6 {
		return cli.Exit("password must be at least 6 characters", 1)
	}

	// 1. Load config
	cfg := config.Load()
	log := applog.Init(cfg.LogLevel)

	// 2. Setup Database
	db := database.ConnectDB(cfg)
	users := repository.NewUserRepo(db)
	ctx := c.Context

	// 3. Find user
	user, err := users.FindByLogin(ctx, login)
	if err != nil {
		return cli.Exit("user "+login+" not found: "+err.Error(), 1)
	}

	// 4. Hash new password
	if err := user.SetPassword(newPassword); err != nil {
		return cli.Exit("failed to hash password: "+err.Error(), 1)
	}

	// 5. Update and end open sessions
	if err := users.UpdatePassword(ctx, user.ID, user.Password, service.SystemActor.Label()); err != nil {
		return cli.Exit("failed to update password: "+err.Error(), 1)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return cli.Exit("failed to end open sessions: "+err.Error(), 1)
	}

	log.Infof("Password for %s has been reset", user.Username)
	return nil
}
