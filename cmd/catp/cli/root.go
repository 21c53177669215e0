// Package cli implements the catp command line interface using Cobra.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/criyle/go-catp/cmd/catp/config"
	"github.com/criyle/go-catp/pkg/log"
	"github.com/criyle/go-catp/pkg/remote"
	"github.com/criyle/go-catp/pkg/router"
	"github.com/criyle/go-catp/ptracer"
	"github.com/criyle/go-catp/types"
)

// Build-time variables injected via ldflags.
var version = "dev"

type options struct {
	configPath string
	fds        []int
	sinks      []string
	verbose    bool
	logFormat  string
	reader     string
	resync     bool
}

// NewCommand creates the catp root command
func NewCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "catp [flags] PID",
		Short: "Mirror what a running process writes to its descriptors",
		Long: `catp attaches to a running process with ptrace and copies every byte
it writes to the selected file descriptors to local sinks, without changing
the behavior of the process. Descriptor 1 is mirrored to stdout, 2 to stderr
and any other descriptor to stdout unless a file sink is given.

The trace ends when the process exits.`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.IntSliceVar(&opts.fds, "fd", []int{1}, "target descriptor to mirror (repeatable)")
	f.StringArrayVar(&opts.sinks, "sink", nil, "write descriptor FD to file PATH instead of stdout / stderr (FD=PATH, repeatable)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every stop and mirrored write to stderr")
	f.StringVar(&opts.logFormat, "log-format", log.FormatAuto, "diagnostic format: auto, text or json")
	f.StringVar(&opts.reader, "reader", remote.NameVM, "remote memory reader: vm (process_vm_readv) or peek (PTRACE_PEEKDATA)")
	f.BoolVar(&opts.resync, "resync", false, "realign out of step syscall stops instead of failing")
	return cmd
}

// Execute runs the catp command and returns the process exit status
func Execute() int {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "catp: %v\n", err)
		return 1
	}
	return 0
}

func run(cmd *cobra.Command, arg string, opts *options) error {
	pid, err := strconv.Atoi(arg)
	if err != nil || pid <= 0 {
		return fmt.Errorf("invalid pid %q", arg)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := log.New(log.Options{
		Verbose: cfg.Verbose,
		Format:  cfg.LogFormat,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	reader, err := remote.New(cfg.Reader)
	if err != nil {
		return err
	}

	r, files, err := newRouter(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	if err != nil {
		return err
	}

	t := &ptracer.Tracer{
		Pid:    pid,
		Router: r,
		Reader: reader,
		Logger: logger,
		Resync: cfg.Resync,
	}
	rt, err := t.TraceRun()
	logSummary(logger, r, rt)
	if err != nil {
		if types.IsPermissionDenied(err) {
			return errors.Wrap(err, "check ptrace permission (CAP_SYS_PTRACE or kernel.yama.ptrace_scope)")
		}
		return err
	}
	return nil
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("fd") {
		cfg.FDs = opts.fds
	}
	if f.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if f.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if f.Changed("reader") {
		cfg.Reader = opts.reader
	}
	if f.Changed("resync") {
		cfg.Resync = opts.resync
	}
	for _, s := range opts.sinks {
		fd, path, err := config.ParseSink(s)
		if err != nil {
			return nil, err
		}
		cfg.AddSink(fd, path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return cfg, nil
}

// newRouter binds the selected descriptors to stdout / stderr and the
// configured file sinks. Files opened are returned even on error so the
// caller can close them.
func newRouter(cfg *config.Config, stdout, stderr io.Writer) (*router.Router, []*os.File, error) {
	r, err := router.Default(stdout, stderr, cfg.FDs)
	if err != nil {
		return nil, nil, err
	}

	var files []*os.File
	opened := make(map[string]*os.File)
	for _, fd := range cfg.SinkDescriptors() {
		path := cfg.Sinks[fd]
		f, ok := opened[path]
		if !ok {
			f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return nil, files, errors.Wrapf(err, "sink for descriptor %d", fd)
			}
			opened[path] = f
			files = append(files, f)
		}
		if err := r.Bind(fd, f); err != nil {
			return nil, files, err
		}
	}
	return r, files, nil
}

func logSummary(logger *slog.Logger, r *router.Router, rt types.Result) {
	logger.Debug("trace finished",
		"status", rt.Status,
		"exit_status", rt.ExitStatus,
		"signal", rt.Signal,
		"stops", rt.Stops,
		"syscalls", rt.Syscalls,
		"writes", rt.Writes,
		"bytes", rt.Bytes,
		"signals", rt.Signals,
		"resyncs", rt.Resyncs,
		"time", rt.RunningTime)
	for fd, s := range r.Stats() {
		logger.Debug("descriptor", "fd", fd, "writes", s.Writes, "bytes", s.Bytes)
	}
}
