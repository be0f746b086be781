package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
	"ttycodec/config"
	"ttycodec/feature"
	"ttycodec/log"

	"golang.org/x/term"
)

const (
	queryVersion   = "\x1b[>q" // XTVERSION
	querySecondary = "\x1b[>c" // secondary device attributes
	// An ellipsis is one column as UTF-8 and three as anything else, so
	// the cursor position after it tells the two apart.
	queryUTF8 = "\r…\x1b[6n\r\x1b[K"
	// Every terminal answers primary device attributes, and replies come
	// in order, so its answer ends the probe.
	queryPrimary = "\x1b[c"
)

var (
	primaryReply  = regexp.MustCompile(`\x1b\[\?[0-9;]*c`)
	positionReply = regexp.MustCompile(`\x1b\[([0-9]+);([0-9]+)R`)
)

// Probe is the outcome of QueryFeatures.
type Probe struct {
	Program  string
	Features feature.Set
	// UTF8 is set only when the UTF-8 check was answered.
	UTF8   *bool
	Reply  []byte
	Answer bool // the terminal answered primary device attributes
}

// QueryFeatures asks the terminal who it is and enables the features its
// answers imply. It waits at most the configured probe timeout, or until
// ctx is done. A terminal that does not answer in time gives
// ErrDetectionTimeout, with whatever arrived still applied.
func (c *Connection) QueryFeatures(ctx context.Context) error {
	p, err := c.probe(ctx)
	if p == nil {
		return err
	}

	before := c.features
	c.features |= p.Features
	if p.Program != "" {
		c.program = p.Program
	}
	if p.UTF8 != nil && c.cfg.UTF8Mode() == config.UTF8Auto {
		c.Output.SetUTF8(*p.UTF8)
	}
	if feature.Apply(c.catalog, c.features) {
		log.InfoLog.Printf("connection %s: detected %q, features %s", c.ID, c.program, c.features&^before)
	}

	if c.state != nil && p.Answer {
		d := config.Detection{
			Program:  c.program,
			Features: c.features.String(),
			UTF8:     c.Output.UTF8(),
		}
		if serr := c.state.Remember(c.Name, d); serr != nil {
			log.WarningLog.Printf("failed to save detection: %v", serr)
		}
	}
	return err
}

func (c *Connection) probe(ctx context.Context) (*Probe, error) {
	deadline := time.Now().Add(c.cfg.ProbeTimeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	fd := int(c.device.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to set raw mode: %v", ErrDetectionTimeout, err)
		}
		defer term.Restore(fd, old)
	}

	query := queryVersion + querySecondary
	checkUTF8 := c.cfg.UTF8Mode() == config.UTF8Auto
	if checkUTF8 {
		query += queryUTF8
	}
	query += queryPrimary
	log.ProbeTrace("sending %q", query)
	if _, err := c.device.Write([]byte(query)); err != nil {
		return nil, fmt.Errorf("%w: failed to send probe: %v", ErrDetectionTimeout, err)
	}
	// The UTF-8 check moved the cursor.
	c.Output.Invalidate()

	defer c.device.SetReadDeadline(time.Time{})
	reply, err := c.readReplies(ctx, deadline)
	log.ProbeTrace("received %q", reply)

	p := parseReplies(reply, checkUTF8)
	if err == nil && !p.Answer {
		err = ErrDetectionTimeout
	}
	return p, err
}

func (c *Connection) readReplies(ctx context.Context, deadline time.Time) ([]byte, error) {
	var reply []byte
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return reply, fmt.Errorf("%w: %v", ErrDetectionTimeout, err)
		}
		// Short reads let ctx be checked while waiting.
		step := time.Now().Add(50 * time.Millisecond)
		if step.After(deadline) {
			step = deadline
		}
		if err := c.device.SetReadDeadline(step); err != nil {
			return reply, fmt.Errorf("%w: failed to set read deadline: %v", ErrDetectionTimeout, err)
		}

		n, err := c.device.Read(buf)
		reply = append(reply, buf[:n]...)
		if primaryReply.Match(reply) {
			return reply, nil
		}
		switch {
		case err == nil:
		case errors.Is(err, os.ErrDeadlineExceeded):
			if !time.Now().Before(deadline) {
				return reply, fmt.Errorf("%w after %s", ErrDetectionTimeout, c.cfg.ProbeTimeout())
			}
		default:
			return reply, fmt.Errorf("%w: %v", ErrDetectionTimeout, err)
		}
	}
}

// parseReplies reads the answers to the probe queries.
func parseReplies(reply []byte, checkUTF8 bool) *Probe {
	p := &Probe{Reply: reply, Answer: primaryReply.Match(reply)}

	p.Program = feature.FromVersion(&p.Features, reply)
	if name := feature.FromDeviceAttributes(&p.Features, reply); p.Program == "" {
		p.Program = name
	}

	if checkUTF8 {
		if m := positionReply.FindSubmatch(reply); m != nil {
			col, _ := strconv.Atoi(string(m[2]))
			utf8 := col == 2
			p.UTF8 = &utf8
		}
	}
	return p
}
