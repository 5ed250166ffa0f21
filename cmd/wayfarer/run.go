package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/internal/gameclient/sim"
	"github.com/wayfarer-go/wayfarer/internal/location"
	"github.com/wayfarer-go/wayfarer/internal/session"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// ErrServerBusy is returned when the initial login is refused for load.
var ErrServerBusy = errors.New("server busy")

type runOptions struct {
	username string
	password string
	duration time.Duration
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scan loop against the configured game backend",
		Long: "Signs in with the given credentials, or the ones bound by an earlier login, " +
			"and scans the world on every loop interval until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := positionSource()
			if err != nil {
				return err
			}
			return runLoop(cmd, nil, src, opts)
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.username, "username", "", "sign in with this account instead of the cached one")
	cmd.Flags().StringVar(&opts.password, "password", "", "password for --username")
	cmd.MarkFlagsRequiredTogether("username", "password")
	return cmd
}

func newDemoCmd() *cobra.Command {
	opts := &runOptions{username: sim.DemoUsername, password: sim.DemoPassword}
	var seed uint64
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the scan loop in a simulated world",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			viper.Set("credentials.store", "memory")

			loc := config.GetLocationConfig()
			center := core.Position{Latitude: loc.Latitude, Longitude: loc.Longitude, Altitude: loc.Altitude}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			world := sim.NewWorld()
			sim.Populate(world, center, rand.New(rand.NewPCG(seed, seed>>1)))
			return runLoop(cmd, world, location.NewStaticSource(center), opts)
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for the simulated world (0 picks one)")
	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
}

func runLoop(cmd *cobra.Command, world *sim.World, src location.Source, opts *runOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.useClient(world); err != nil {
		return err
	}
	if err := a.setupPipeline(ctx, src); err != nil {
		return err
	}

	if err := a.signIn(ctx, opts.username, opts.password); err != nil {
		return err
	}

	a.log.Info("Scan loop started", "interval", config.GetLoopConfig().Interval)
	err = a.loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		a.log.Info("Scan loop stopped", "ticks", a.loop.Ticks())
		return nil
	}
	return err
}

// signIn performs the initial login and reports it to the observers. Without
// explicit credentials the cached pair is used.
func (a *app) signIn(ctx context.Context, username, password string) error {
	var (
		results <-chan core.LoginResult
		err     error
	)
	switch {
	case username != "":
		results, err = a.session.Login(ctx, username, password)
	case a.session.HasCachedCredentials(ctx):
		results, err = a.session.Relogin(ctx)
	default:
		return errors.New("no credentials: run the login command or pass --username and --password")
	}
	if err != nil {
		return err
	}

	res, err := awaitLogin(ctx, results)
	if err != nil {
		return err
	}
	a.hub.OnLoginCompleted(res)
	return loginError(res)
}

func loginError(res core.LoginResult) error {
	switch res.Status {
	case core.LoginSuccess:
		return nil
	case core.LoginInvalidCredentials:
		return fmt.Errorf("%s: %w", res.Message, session.ErrInvalidCredentials)
	default:
		return fmt.Errorf("%s: %w", res.Message, ErrServerBusy)
	}
}
