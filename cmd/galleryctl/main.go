package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/bootstrap"
	"github.com/budhitree/nexus-art-gallery/internal/config"
	artworkRepo "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/repository"
	artwork "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/service"
	userRepo "github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	user "github.com/budhitree/nexus-art-gallery/internal/modules/user/service"
	"github.com/budhitree/nexus-art-gallery/internal/scheduler"
	"github.com/budhitree/nexus-art-gallery/internal/server"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(defaultEnv()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "galleryctl: %v\n", err)
		os.Exit(1)
	}
}

// env opens the resources a command needs. Tests swap it out.
type env struct {
	openStore   func(ctx context.Context) (*store.Store, error)
	openStorage func(ctx context.Context) (storage.ImageStorage, error)
}

func defaultEnv() env {
	return env{
		openStore: func(ctx context.Context) (*store.Store, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return server.OpenStore(ctx, cfg)
		},
		openStorage: func(ctx context.Context) (storage.ImageStorage, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return server.OpenStorage(ctx, cfg)
		},
	}
}

func newRootCommand(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "galleryctl",
		Short: "Nexus Art Gallery maintenance CLI",
		Long: `galleryctl works directly on the gallery's document store and image storage,
using the same environment variables as the server.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newSeedAdminCmd(e),
		newUsersCmd(e),
		newSweepCmd(e),
	)
	return cmd
}

func newSeedAdminCmd(e env) *cobra.Command {
	var password, name string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			users := user.NewUserService(userRepo.NewUserRepository(s))
			created, err := bootstrap.SeedAdminUser(ctx, users, password, name)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "admin account created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "admin account already exists")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password for the admin account")
	cmd.Flags().StringVar(&name, "name", bootstrap.DefaultAdminName, "Display name for the admin account")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every registered account id",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			ids, err := user.NewUserService(userRepo.NewUserRepository(s)).ListUserIDs(ctx)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), ids)
		},
	}
}

func newSweepCmd(e env) *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored images that no artwork references",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			blobs, err := e.openStorage(ctx)
			if err != nil {
				return err
			}
			svc := artwork.NewArtworkService(artworkRepo.NewArtworkRepository(s), userRepo.NewUserRepository(s), blobs)

			sched := scheduler.NewScheduler()
			if err := sched.Register(scheduler.NewSweepJob(svc, "", grace)); err != nil {
				return err
			}
			return sched.RunByName(ctx, scheduler.SweepJobName)
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", scheduler.DefaultSweepGrace, "Keep unreferenced images younger than this")
	return cmd
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
