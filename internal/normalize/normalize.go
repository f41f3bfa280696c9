// Package normalize rewrites the info field of generated modules into the
// two-tier header/body shape where that can be done mechanically.
package normalize

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/infoblock"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/module"
)

// Unfixed reasons.
const (
	ReasonNoInfo      = "no info field"
	ReasonUnparseable = "unparseable info literal"
	ReasonEmpty       = "empty info"
	ReasonShape       = "unsupported paragraph shape"
	ReasonBodyTooLong = "body paragraph too long"
)

// Result describes what happened to one module.
type Result struct {
	Path    string
	Fixed   bool
	Changed bool
	Reason  string
	Content []byte
}

// Normalizer applies the reshape rules.
type Normalizer struct {
	maxBody     int
	projectLink infoblock.Node
	logger      *slog.Logger
}

// New creates a Normalizer from configuration.
func New(cfg config.NormalizeConfig, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		maxBody:     cfg.MaxBodyLength,
		projectLink: infoblock.Link(cfg.ProjectLink.Content, cfg.ProjectLink.URL),
		logger:      logger,
	}
}

// Reshape returns the two-tier form of b, or ok=false with a reason.
//
// One paragraph becomes the header on its own. Two paragraphs whose header
// starts with the project link and whose body renders within the length
// limit are folded into a single header line.
func (n *Normalizer) Reshape(b infoblock.Block) (infoblock.Block, bool, string) {
	switch {
	case len(b) == 0:
		return nil, false, ReasonEmpty
	case len(b) == 1:
		return infoblock.Block{append(infoblock.Paragraph{}, b[0]...)}, true, ""
	case len(b) == 2 && len(b[0]) > 0 && b[0][0] == n.projectLink:
		if b[1].RenderedLength() > n.maxBody {
			return nil, false, ReasonBodyTooLong
		}
		header := make(infoblock.Paragraph, 0, len(b[0])+len(b[1]))
		header = append(header, b[0]...)
		header = append(header, b[1]...)
		return infoblock.Block{header}, true, ""
	default:
		return nil, false, ReasonShape
	}
}

// Text normalizes module source text.
func (n *Normalizer) Text(ctx context.Context, src []byte) Result {
	lit, err := module.InfoLiteral(string(src))
	if err != nil {
		return Result{Reason: ReasonNoInfo, Content: src}
	}
	block, err := infoblock.ParseLiteral(ctx, lit)
	if err != nil {
		n.logger.Debug("Info literal did not parse", logfields.Error(err))
		return Result{Reason: ReasonUnparseable, Content: src}
	}
	shaped, ok, reason := n.Reshape(block)
	if !ok {
		return Result{Reason: reason, Content: src}
	}
	out, err := module.ReplaceInfo(string(src), shaped)
	if err != nil {
		return Result{Reason: ReasonNoInfo, Content: src}
	}
	return Result{Fixed: true, Changed: out != string(src), Content: []byte(out)}
}

// File normalizes the module at path, rewriting it unless dryRun is set.
func (n *Normalizer) File(ctx context.Context, path string, dryRun bool) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read module").
			AtPath(path).
			Build()
	}

	res := n.Text(ctx, src)
	res.Path = path
	if !res.Fixed {
		n.logger.Info("Info needs manual review", logfields.Path(path), slog.String("reason", res.Reason))
		return res, nil
	}
	if !res.Changed || dryRun {
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat module").
			AtPath(path).
			Build()
	}
	if err := os.WriteFile(path, res.Content, info.Mode().Perm()); err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to write module").
			AtPath(path).
			Build()
	}
	n.logger.Debug("Normalized info", logfields.Path(path))
	return res, nil
}
