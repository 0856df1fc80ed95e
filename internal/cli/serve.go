package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var signalNotifyContext = signal.NotifyContext

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	var watchChanges bool
	var noGit bool
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview the site directory locally",
		Long: "Serve the site directory over HTTP on 127.0.0.1. With --watch the generated files are\n" +
			"rewritten whenever pages change while the server runs; the site flags then apply to\n" +
			"those runs exactly as they do for generate and watch.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalNotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if !watchChanges {
				return serveDirectory(ctx, dir, port, cmd.OutOrStdout())
			}

			s, err := loadSite(cmd, opts, args, &flags)
			if err != nil {
				return err
			}
			watchErr := make(chan error, 1)
			go func() {
				watchErr <- s.watch(ctx, 0, !noGit)
			}()
			serveErr := serveDirectory(ctx, s.root, port, cmd.OutOrStdout())
			stop()
			if err := <-watchErr; err != nil && serveErr == nil {
				return err
			}
			return serveErr
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (use 0 for random available port)")
	cmd.Flags().BoolVar(&watchChanges, "watch", false, "Regenerate outputs while serving")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "With --watch, skip the version-control query")

	return cmd
}

func serveDirectory(ctx context.Context, dir string, port int, out io.Writer) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat serve directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("serve path is not a directory: %s", dir)
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler:           loggingMiddleware(http.FileServer(http.Dir(dir)), out),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(out, "Serving %s at http://%s\n", dir, listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		<-errCh
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler, out io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, req)
		fmt.Fprintf(out, "%s %s %d\n", req.Method, req.URL.Path, recorder.status)
	})
}
