package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hr-ops-bot/internal/config"
	"hr-ops-bot/internal/database"
	"hr-ops-bot/internal/document"
	"hr-ops-bot/internal/handler"
	"hr-ops-bot/internal/health"
	"hr-ops-bot/internal/notify"
	"hr-ops-bot/internal/repository"
	"hr-ops-bot/internal/service"
	"hr-ops-bot/internal/workflow"
	"hr-ops-bot/pkg/telegram"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "hr-ops-bot",
	Short: "Discord bot for overtime requests",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		setLogLevel(config.Load().LogLevel)
	},
	RunE: runBot,
}

func main() {
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(holidaysCmd())
	rootCmd.AddCommand(approverCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve interactions (default)",
		RunE:  runBot,
	}
}

// stores holds the databases and repositories shared by every command.
type stores struct {
	db       *gorm.DB
	portalDB *gorm.DB
	requests *repository.GormOvertimeRequestRepository
	teams    *repository.GormTeamApproverRepository
	holidays *repository.GormNonWorkingDayRepository
	portal   *repository.GormPortalRepository
}

func openStores(cfg *config.BotConfig) (*stores, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	portalDB := db
	if cfg.PortalDatabaseURL != cfg.DatabaseURL {
		if portalDB, err = database.Open(cfg.PortalDatabaseURL); err != nil {
			return nil, err
		}
	}

	requests, err := repository.NewGormOvertimeRequestRepository(db)
	if err != nil {
		return nil, err
	}

	teams, err := repository.NewGormTeamApproverRepository(db)
	if err != nil {
		return nil, err
	}

	holidays, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		return nil, err
	}

	return &stores{
		db:       db,
		portalDB: portalDB,
		requests: requests,
		teams:    teams,
		holidays: holidays,
		portal:   repository.NewGormPortalRepository(portalDB),
	}, nil
}

func (s *stores) Close() {
	for _, db := range []*gorm.DB{s.db, s.portalDB} {
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		if err := sqlDB.Close(); err != nil {
			logrus.Infof("Error closing database: %v", err)
		}
		if s.db == s.portalDB {
			break
		}
	}
}

func newAlerter(cfg *config.BotConfig) *notify.OperatorAlerter {
	if cfg.TelegramToken == "" || cfg.OpsTelegramChatID == 0 {
		logrus.Info("Operator alerts go to the log only")
		return notify.NewOperatorAlerter(nil, 0)
	}

	client, err := telegram.NewClient(cfg.TelegramToken)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create Telegram client, operator alerts go to the log only")
		return notify.NewOperatorAlerter(nil, 0)
	}

	logrus.Infof("Operator alerts via Telegram account %s", client.Bot.Self.UserName)
	return notify.NewOperatorAlerter(client, cfg.OpsTelegramChatID)
}

func runBot(cmd *cobra.Command, _ []string) error {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.Info("Config initialized...")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		logrus.WithError(err).Error("Failed to open databases")
		return err
	}
	defer st.Close()

	holidayService := service.NewNonWorkingDayService(st.holidays)
	if cfg.HolidaysFile != "" {
		n, err := holidayService.LoadFromJSON(ctx, cfg.HolidaysFile)
		if err != nil {
			logrus.WithError(err).Warn("Failed to load holidays file, keeping stored holidays")
		} else {
			logrus.Infof("Loaded %d non-working days from %s", n, cfg.HolidaysFile)
		}
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logrus.WithError(err).Error("Failed to create Discord session")
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	directory := service.NewDirectoryService(st.portal)
	approvers := service.NewApproverService(st.teams)
	sessions := workflow.NewSessionStore()

	overtime := service.NewOvertimeService(service.OvertimeDeps{
		Sessions:   sessions,
		Candidates: service.NewTimeEntryResolver(directory, st.holidays, st.requests, cfg.LookbackDays, cfg.ThresholdMinutes),
		Profiles:   directory,
		Requests:   st.requests,
		Approvers:  approvers,
		Composer:   document.NewComposer(),
		Notifier:   handler.NewDiscordNotifier(dg),
		Mailer: notify.NewMailer(notify.MailConfig{
			Host:      cfg.EmailHost,
			Port:      cfg.EmailPort,
			User:      cfg.EmailUser,
			Password:  cfg.EmailPassword,
			Recipient: cfg.EmailRecipient,
			SSL:       cfg.EmailSSL,
		}),
		Alerter: newAlerter(cfg),
	})

	limiter := handler.NewUserRateLimiter(rate.Every(10*time.Second), 3)
	botHandler := handler.NewHandler(overtime, approvers, limiter, cfg)
	dg.AddHandler(botHandler.OnInteraction)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logrus.Infof("Logged in as %s", r.User.Username)
	})

	if err := dg.Open(); err != nil {
		logrus.WithError(err).Error("Failed to connect to Discord")
		return err
	}
	defer dg.Close()

	if err := handler.RegisterCommands(dg, dg.State.User.ID, cfg.DiscordGuildID); err != nil {
		logrus.WithError(err).Error("Failed to register slash commands")
		return err
	}

	go sessions.Run(ctx, sessionSweepInterval)
	go limiter.Run(ctx, sessionSweepInterval)

	srv := newHealthServer(cfg.HTTPAddr, st, func() bool { return dg.DataReady })
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Health server stopped")
		}
	}()

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Infof("Error stopping health server: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
	return nil
}

func newHealthServer(addr string, st *stores, gateway func() bool) *http.Server {
	checks := health.Checks{Gateway: gateway}

	if sqlDB, err := st.db.DB(); err == nil {
		checks.Database = sqlDB
	}
	if st.portalDB != st.db {
		if sqlDB, err := st.portalDB.DB(); err == nil {
			checks.Portal = sqlDB
		}
	}

	return &http.Server{
		Addr:              addr,
		Handler:           health.NewRouter(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
