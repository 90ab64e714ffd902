package provision

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

var channelRe = regexp.MustCompile(`^(stable|beta|nightly)(-\d{4}-\d{2}-\d{2})?$`)

// ValidateToolchain accepts release channels, dated channels and version
// numbers such as 1.79 or 1.79.0.
func ValidateToolchain(v string) error {
	v = strings.TrimSpace(v)
	if channelRe.MatchString(v) {
		return nil
	}
	if _, err := semver.StrictNewVersion(v); err == nil {
		return nil
	}
	if strings.Count(v, ".") == 1 {
		if _, err := semver.NewVersion(v); err == nil {
			return nil
		}
	}
	return errors.WithHint(
		errors.Newf("invalid toolchain %q", v),
		"use stable, beta, nightly, nightly-YYYY-MM-DD or a version like 1.79.0",
	)
}

func (h *Host) installToolchain(ctx context.Context, v string) error {
	v = strings.TrimSpace(v)
	if err := ValidateToolchain(v); err != nil {
		return err
	}
	h.log.Infow("installing toolchain", "toolchain", v)
	if _, err := h.cmd.Run(ctx, "rustup", "toolchain", "install", v, "--component", "clippy"); err != nil {
		return errors.Wrapf(err, "install toolchain %s", v)
	}
	if _, err := h.cmd.Run(ctx, "rustup", "default", v); err != nil {
		return errors.Wrapf(err, "select toolchain %s", v)
	}
	out, err := h.cmd.Run(ctx, "rustc", "--version")
	if err != nil {
		return errors.Wrap(err, "rustc --version")
	}
	fmt.Fprintln(h.out, strings.TrimSpace(string(out)))
	return nil
}
