package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xvello/mpdify-go/internal/artcache"
	mpdifyconfig "github.com/xvello/mpdify-go/internal/config"
	pctx "github.com/xvello/mpdify-go/internal/context"
	"github.com/xvello/mpdify-go/internal/httpapi"
	"github.com/xvello/mpdify-go/internal/idlebus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/xvello/mpdify-go/internal/mpdserver"
	"github.com/xvello/mpdify-go/internal/playback"
	"github.com/xvello/mpdify-go/internal/playbackhandler"
	mpdifyspotify "github.com/xvello/mpdify-go/internal/spotify"
	"github.com/xvello/mpdify-go/internal/systemhandler"
)

var (
	mpdAddr  = flag.String("mpd-addr", "", "Override the MPD listener address (default: config-derived)")
	httpAddr = flag.String("http-addr", "", "Override the HTTP listener address (default: config-derived)")
	logLevel = flag.String("log-level", "info", "Logging level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	log := logrus.New()
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}

	cfg, err := mpdifyconfig.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	auth := mpdifyspotify.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.AuthPath(), cfg.CachePath)
	if !auth.HasToken() {
		log.WithField("component", "spotify-auth").Info("no Spotify session yet, visit the auth URL to connect one")
	}
	client := mpdifyspotify.NewLazyClient(auth, cfg.AuthPath())

	bus := idlebus.New(log.WithField("component", "idlebus"))
	contextCache := pctx.New(client, bus)
	poller := playback.NewPoller(
		client,
		auth,
		bus,
		log.WithField("component", "poller"),
		time.Duration(cfg.PlaybackPoolFreqBaseSeconds)*time.Second,
		time.Duration(cfg.PlaybackPoolFreqFastSeconds)*time.Second,
	)

	artCache, err := artcache.NewDiskCache(cfg.CachePath, cfg.ArtworkCacheSizeBytes(), log.WithField("component", "artcache"))
	if err != nil {
		log.WithError(err).Fatal("opening artwork cache")
	}
	artHandler := artcache.NewHandler(artCache, client, cfg.ArtworkChunkSizeBytes())

	playbackHandler := playbackhandler.New(client, auth, poller, contextCache)

	dispatcher := mpdproto.NewDispatcher(
		mpdproto.NewMailbox(playbackHandler, 16),
		mpdproto.NewMailbox(artHandler, 8),
		mpdproto.NewMailbox(systemhandler.New(), 8),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go poller.Run(ctx)

	mpdListenAddr := cfg.MPDAddress()
	if *mpdAddr != "" {
		mpdListenAddr = *mpdAddr
	}
	if err := runMPDListener(ctx, mpdListenAddr, dispatcher, bus, log); err != nil {
		log.WithError(err).Fatal("starting MPD listener")
	}

	httpListenAddr := cfg.HTTPAddress()
	if *httpAddr != "" {
		httpListenAddr = *httpAddr
	}
	server := httpapi.New(dispatcher, auth, log.WithField("component", "httpapi"))
	go func() {
		if err := server.Engine().Run(httpListenAddr); err != nil {
			log.WithError(err).Error("HTTP listener stopped")
		}
	}()

	log.Infof("mpdify listening: mpd=%s http=%s", mpdListenAddr, httpListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
}

// runMPDListener starts the TCP accept loop for the MPD protocol in the
// background, returning once the listen socket is bound.
func runMPDListener(ctx context.Context, addr string, dispatcher *mpdproto.Dispatcher, bus *idlebus.Bus, log *logrus.Entry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					log.WithError(err).Warn("accept failed")
					continue
				}
			}
			connLog := log.WithField("component", "mpdserver").WithField("remote", conn.RemoteAddr().String())
			c := mpdserver.New(conn, dispatcher, bus, connLog)
			go c.Serve(ctx)
		}
	}()

	return nil
}
