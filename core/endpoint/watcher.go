package endpoint

import (
	"bufio"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Sentinel prefixes the line the server prints once it is listening.
const Sentinel = "EngineFS server started at "

// maxLine bounds a single stdout line.
const maxLine = 1024 * 1024

// Parse extracts the endpoint from a stdout line. ok is false when the line is not a sentinel;
// err is set when it is one but the URL after the prefix does not parse.
func Parse(line string) (u *url.URL, ok bool, err error) {
	raw, found := strings.CutPrefix(strings.TrimRight(line, "\r"), Sentinel)
	if !found {
		return nil, false, nil
	}
	raw = strings.TrimSpace(raw)
	u, err = url.Parse(raw)
	if err != nil {
		return nil, true, err
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, true, &url.Error{Op: "parse", URL: raw, Err: errUnsupportedScheme}
	case u.Host == "":
		return nil, true, &url.Error{Op: "parse", URL: raw, Err: errMissingHost}
	}
	return u, true, nil
}

// Watch reads r until EOF, logging every line at debug level and publishing the first valid
// sentinel URL into cell. Malformed sentinel lines are logged and skipped. Lines longer than
// maxLine are dropped without stopping the read. Watch keeps draining r after a value was
// published so the child never blocks on a full pipe.
func Watch(r io.Reader, cell *Cell, logger *zap.Logger) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		buf      []byte
		oversize bool
	)
	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if err != io.EOF {
				logger.Debug("server output closed", zap.Error(err))
			}
			return
		}

		if !oversize {
			if len(buf)+len(frag) > maxLine {
				oversize = true
				buf = buf[:0]
			} else {
				buf = append(buf, frag...)
			}
		}
		if more {
			continue
		}

		if oversize {
			logger.Warn("dropping oversize server output line", zap.Int("limit", maxLine))
		} else {
			handleLine(string(buf), cell, logger)
		}
		buf = buf[:0]
		oversize = false
	}
}

func handleLine(line string, cell *Cell, logger *zap.Logger) {
	logger.Debug("server output", zap.String("line", line))

	if cell.Get() != nil {
		return
	}

	u, ok, err := Parse(line)
	if !ok {
		return
	}
	if err != nil {
		logger.Warn("ignoring malformed server endpoint", zap.String("line", line), zap.Error(err))
		return
	}
	if cell.Set(u) {
		logger.Info("server endpoint discovered", zap.String("url", u.String()))
	}
}
