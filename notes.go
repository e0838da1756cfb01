package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"love-space-backend/config"
	"love-space-backend/models/recording"
	"love-space-backend/services/client"
	"love-space-backend/services/clock"
)

var (
	apiURL      = app.Flag("api", "Gate service URL, api_url from the config by default.").Envar("LOVE_API_URL").String()
	passphrase  = app.Flag("passphrase", "The shared passphrase.").Envar("LOVE_PASSPHRASE").String()
	email       = app.Flag("email", "Your allow-listed email.").Envar("LOVE_EMAIL").String()
	accessToken = app.Flag("token", "Provider access token for your email.").Envar("LOVE_ACCESS_TOKEN").String()
	password    = app.Flag("password", "Provider password, used instead of --token.").Envar("LOVE_PASSWORD").String()

	signupCommand = app.Command("signup", "Create your provider account with --email and --password.")

	sendCommand = app.Command("send", "Send a voice note.")
	sendFile    = sendCommand.Arg("file", "Audio file to send.").Required().ExistingFile()
	sendMood    = sendCommand.Flag("mood", "Mood label, e.g. Loving.").Default(recording.DefaultMood().Label).String()
	sendCaption = sendCommand.Flag("caption", "Short caption.").String()

	timelineCommand = app.Command("timeline", "List every voice note, newest first.")

	reactCommand = app.Command("react", "React to a voice note.")
	reactID      = reactCommand.Arg("id", "Recording id.").Required().String()
	reactEmoji   = reactCommand.Arg("emoji", "Reaction emoji.").Required().String()

	watchCommand = app.Command("watch", "Stay online and report when your partner is.")
)

func unlockedSession(ctx context.Context) (*client.Session, *config.Config) {
	cfg := loadConfig()
	url := *apiURL
	if url == "" {
		url = cfg.APIURL
	}

	api, err := client.NewAPI(url)
	kingpin.FatalIfError(err, "API")

	session := client.NewSession(api)
	kingpin.FatalIfError(session.Unlock(ctx, *passphrase), "Passphrase")
	return session, cfg
}

func signIn(ctx context.Context) *client.Session {
	session, cfg := unlockedSession(ctx)

	if *password != "" {
		auth := client.NewAuthProvider(cfg.AuthURL(), cfg.SupabaseAnonKey)
		kingpin.FatalIfError(session.SignInWithPassword(ctx, auth, *email, *password), "Sign in")
		return session
	}
	kingpin.FatalIfError(session.SignIn(ctx, *email, *accessToken), "Sign in")
	return session
}

func doSignup(ctx context.Context) {
	if *password == "" {
		kingpin.Fatalf("--password is required")
	}
	session, cfg := unlockedSession(ctx)

	auth := client.NewAuthProvider(cfg.AuthURL(), cfg.SupabaseAnonKey)
	err := session.SignUp(ctx, auth, *email, *password)
	if errors.Is(err, client.ErrConfirmEmail) {
		fmt.Println("Check your email for the verification link.")
		return
	}
	kingpin.FatalIfError(err, "Sign up")
	fmt.Printf("signed up as %s\n", *email)
}

func doSend(ctx context.Context) {
	session := signIn(ctx)

	fd, err := os.Open(*sendFile)
	kingpin.FatalIfError(err, "Open")
	defer fd.Close()

	uploader := &client.Uploader{Session: session}
	rec, err := uploader.Send(ctx, filepath.Base(*sendFile), fd, *sendCaption, *sendMood)
	kingpin.FatalIfError(err, "Send")
	fmt.Printf("sent %s (%s)\n", rec.ID, rec.Mood)
}

func printEntries(entries []client.Entry) {
	for _, entry := range entries {
		who := entry.UserEmail
		if entry.Own {
			who = "you"
		}
		caption := ""
		if entry.Caption != nil {
			caption = " " + *entry.Caption
		}
		fmt.Printf("%s  %s  %-16s %s%s\n  %s\n",
			entry.ID, entry.CreatedAt.Local().Format(time.RFC822),
			who, entry.Mood, caption, entry.AudioURL)
	}
}

func doTimeline(ctx context.Context) {
	timeline := &client.Timeline{Session: signIn(ctx)}
	entries, err := timeline.Load(ctx)
	kingpin.FatalIfError(err, "Timeline")
	printEntries(entries)
}

func doReact(ctx context.Context) {
	if !isOfferedReaction(*reactEmoji) {
		logrus.Warnf("%s is not one of %s", *reactEmoji, strings.Join(recording.ReactionEmojis, " "))
	}

	timeline := &client.Timeline{Session: signIn(ctx)}
	entries, err := timeline.React(ctx, *reactID, *reactEmoji)
	kingpin.FatalIfError(err, "React")
	printEntries(entries)
}

func isOfferedReaction(emoji string) bool {
	for _, e := range recording.ReactionEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

func doWatch(ctx context.Context) {
	session := signIn(ctx)

	poller := client.NewPoller(session, clock.RealClock{})
	poller.OnChange = func(p client.Presence) {
		fmt.Printf("%s partner is %s\n", time.Now().Format(time.Kitchen), p)
	}
	kingpin.FatalIfError(poller.Start(ctx), "Presence")

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	poller.Stop(stopCtx)
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		switch command {
		case signupCommand.FullCommand():
			doSignup(ctx)
		case sendCommand.FullCommand():
			doSend(ctx)
		case timelineCommand.FullCommand():
			doTimeline(ctx)
		case reactCommand.FullCommand():
			doReact(ctx)
		case watchCommand.FullCommand():
			doWatch(ctx)
		default:
			return false
		}
		return true
	})
}
