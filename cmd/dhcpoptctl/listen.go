package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/danmuck/dhcpopt/internal/auth"
	"github.com/danmuck/dhcpopt/internal/capture"
	"github.com/danmuck/dhcpopt/internal/config"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/danmuck/dhcpopt/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newListenCmd(a *app) *cobra.Command {
	var addr, metricsAddr, writePCAP string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Decode DHCP datagrams from a UDP socket and serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Listen.Addr = addr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Listen.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("write-pcap") {
				cfg.Listen.WritePCAP = writePCAP
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			svc, err := newListenService(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return svc.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "UDP address to read datagrams from")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "HTTP address of the admin server")
	cmd.Flags().StringVar(&writePCAP, "write-pcap", "", "record received datagrams to this pcap file")
	return cmd
}

// recorder serializes printing and pcap writes across handler calls.
type recorder struct {
	mu   sync.Mutex
	out  io.Writer
	cfg  config.Config
	pcap *capture.PCAPWriter
}

func (r *recorder) handle(p capture.Packet, res pipeline.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := emit(r.out, res, r.cfg, false); err != nil {
		log.Warn().Err(err).Msg("listen.recorder.handle output failed")
	}
	if r.pcap != nil {
		if err := r.pcap.Write(p); err != nil {
			log.Warn().Err(err).Msg("listen.recorder.handle pcap write failed")
		}
	}
}

// listenService is one UDP listener plus its admin server.
type listenService struct {
	cfg   config.Config
	opts  pipeline.Options
	ln    *capture.Listener
	admin *server.Server
	rec   *recorder
	pcap  *os.File
}

// newListenService binds the UDP socket and opens the pcap file, if any.
func newListenService(cfg config.Config, out io.Writer) (*listenService, error) {
	svc := &listenService{cfg: cfg, rec: &recorder{out: out, cfg: cfg}}
	if cfg.Listen.WritePCAP != "" {
		fh, err := os.Create(cfg.Listen.WritePCAP)
		if err != nil {
			return nil, err
		}
		pw, err := capture.NewPCAPWriter(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		svc.pcap, svc.rec.pcap = fh, pw
	}

	ln, err := capture.Listen(cfg.Listen.Addr, cfg.Limits().MaxFrameBytes)
	if err != nil {
		svc.closePCAP()
		return nil, err
	}
	svc.ln = ln

	svc.opts = cfg.PipelineOptions()
	svc.opts.Frame = true
	svc.admin = server.New(cfg.Listen.MetricsAddr, cfg.Listen.CorsOrigins, svc.opts)
	if cfg.Listen.AdminToken != "" {
		svc.admin.Auth = auth.StaticToken{Token: cfg.Listen.AdminToken}
	}
	return svc, nil
}

func (s *listenService) UDPAddr() net.Addr { return s.ln.Addr() }

func (s *listenService) closePCAP() {
	if s.pcap != nil {
		if err := s.pcap.Close(); err != nil {
			log.Warn().Err(err).Msg("listen.listenService.closePCAP failed")
		}
	}
}

func (s *listenService) handle(p capture.Packet) {
	res := pipeline.Process(p.Source(), p.Payload, s.opts)
	res.Time = p.Time
	s.admin.Stats.Observe(res)
	s.rec.handle(p, res)
}

// Run serves datagrams and the admin server until ctx is done or either
// fails.
func (s *listenService) Run(ctx context.Context) error {
	defer s.closePCAP()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.ln.Serve(gctx, s.handle)
	})
	g.Go(func() error {
		return s.admin.ListenAndServe(gctx)
	})

	log.Info().
		Str("udp", s.ln.Addr().String()).
		Str("admin", s.cfg.Listen.MetricsAddr).
		Msg("listen.listenService.Run started")
	err := g.Wait()
	log.Info().Err(err).Msg("listen.listenService.Run stopped")
	return err
}
