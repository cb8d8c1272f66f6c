package relay

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"

	"github.com/zrax-x/apt-analysis-mcp/internal/config"
	"github.com/zrax-x/apt-analysis-mcp/internal/sample"
)

// Request is one batch of samples to retrieve.
type Request struct {
	Hashes []string
	// OutputDir overrides local_download_dir when set.
	OutputDir string
}

// Result describes what a batch produced. Missing lists identifiers that were
// not present on the target and Failed those present but not retrievable;
// the rest are in Downloaded.
type Result struct {
	RunID      string
	OutputDir  string
	Requested  []string
	Downloaded []string
	Missing    []string
	Failed     []Failure
	Bytes      int64
}

// Failure is one sample that exists on the target but could not be copied.
type Failure struct {
	SHA256 string
	Reason string
}

// Downloader retrieves samples from the target through the jumper.
type Downloader struct {
	cfg    *config.Config
	logger *log.Logger
}

// New returns a Downloader for cfg. A nil logger discards output.
func New(cfg *config.Config, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Downloader{cfg: cfg, logger: logger.WithPrefix("relay")}
}

// Check opens the tunnel and confirms the workdir is reachable over SFTP.
func (d *Downloader) Check(ctx context.Context) error {
	t, err := openTunnel(ctx, d.cfg)
	if err != nil {
		return err
	}
	defer t.Close()

	files, err := sftp.NewClient(t.Target())
	if err != nil {
		return errors.Wrap(err, "start sftp")
	}
	defer files.Close()

	fi, err := files.Stat(d.cfg.Target.Workdir)
	if err != nil {
		return errors.Wrapf(err, "stat workdir %s", d.cfg.Target.Workdir)
	}
	if !fi.IsDir() {
		return errors.Errorf("workdir %s is not a directory", d.cfg.Target.Workdir)
	}
	return nil
}

// Download validates the identifiers, opens the two-hop tunnel and copies
// every sample it can find into the output directory.
func (d *Downloader) Download(ctx context.Context, req Request) (*Result, error) {
	hashes, err := sample.Normalize(req.Hashes)
	if err != nil {
		return nil, err
	}
	outDir := req.OutputDir
	if outDir == "" {
		outDir = d.cfg.LocalDownloadDir
	}
	outDir, err = filepath.Abs(config.ExpandHome(outDir))
	if err != nil {
		return nil, errors.Wrap(err, "output directory")
	}

	res := &Result{
		RunID:     uuid.NewString(),
		OutputDir: outDir,
		Requested: hashes,
	}
	logger := d.logger.With("run", res.RunID)
	logger.Info("starting download", "samples", len(hashes), "jumper", d.cfg.Jumper.Addr(), "target", d.cfg.Target.Addr())

	t, err := openTunnel(ctx, d.cfg)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			logger.Debug("tunnel close", "err", cerr)
		}
	}()

	files, err := sftp.NewClient(t.Target())
	if err != nil {
		return res, errors.Wrap(err, "start sftp")
	}
	defer files.Close()

	if d.cfg.Target.CollectCommand != "" {
		if err := collect(ctx, t.Target(), files, d.cfg.Target, hashes, logger); err != nil {
			return res, err
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, errors.Wrapf(err, "create %s", outDir)
	}

	for _, h := range hashes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		remote := path.Join(d.cfg.Target.Workdir, h)
		n, err := fetchFile(files, remote, filepath.Join(outDir, h))
		var item *itemError
		switch {
		case errors.Is(err, errRemoteMissing):
			logger.Warn("sample missing on target", "sha256", h)
			res.Missing = append(res.Missing, h)
		case errors.As(err, &item):
			logger.Warn("sample not retrievable", "sha256", h, "err", item)
			res.Failed = append(res.Failed, Failure{SHA256: h, Reason: item.Error()})
		case err != nil:
			return res, err
		default:
			logger.Debug("downloaded", "sha256", h, "bytes", n)
			res.Downloaded = append(res.Downloaded, h)
			res.Bytes += n
		}
	}

	if len(res.Downloaded) == 0 {
		return res, errors.Wrap(ErrNothingDownloaded, res.problems())
	}
	logger.Info("download finished", "downloaded", len(res.Downloaded), "missing", len(res.Missing), "failed", len(res.Failed), "bytes", res.Bytes)
	return res, nil
}
