package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/danmuck/dhcpopt/internal/protocol/frame"
	"github.com/danmuck/dhcpopt/internal/protocol/options"
)

type headerJSON struct {
	Op           uint8      `json:"op"`
	HType        uint8      `json:"htype"`
	Hops         uint8      `json:"hops"`
	XID          string     `json:"xid"`
	Secs         uint16     `json:"secs"`
	Broadcast    bool       `json:"broadcast"`
	CIAddr       netip.Addr `json:"ciaddr"`
	YIAddr       netip.Addr `json:"yiaddr"`
	SIAddr       netip.Addr `json:"siaddr"`
	GIAddr       netip.Addr `json:"giaddr"`
	HardwareAddr string     `json:"chaddr"`
	ServerName   string     `json:"sname,omitempty"`
	BootFile     string     `json:"file,omitempty"`
}

// View selects what Render and JSON include.
type View struct {
	Report bool
}

// JSON renders r as one JSON object.
func JSON(r Result, v View) ([]byte, error) {
	out := struct {
		Source     string           `json:"source"`
		Time       *time.Time       `json:"time,omitempty"`
		Header     *headerJSON      `json:"header,omitempty"`
		Options    []options.Option `json:"options"`
		Sections   []frame.Section  `json:"sections,omitempty"`
		Truncated  bool             `json:"truncated"`
		Validation string           `json:"validation,omitempty"`
		Error      string           `json:"error,omitempty"`
	}{
		Source:    r.Source,
		Options:   r.Options,
		Truncated: r.Truncated(),
	}
	if !r.Time.IsZero() {
		t := r.Time
		out.Time = &t
	}
	if r.Header != nil {
		out.Header = newHeaderJSON(r)
	}
	if out.Options == nil {
		out.Options = []options.Option{}
	}
	if v.Report {
		out.Sections = r.Sections
	}
	if r.Validation != nil {
		out.Validation = r.Validation.Error()
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

func newHeaderJSON(r Result) *headerJSON {
	h := r.Header
	return &headerJSON{
		Op:           h.Op,
		HType:        h.HType,
		Hops:         h.Hops,
		XID:          fmt.Sprintf("0x%08x", h.XID),
		Secs:         h.Secs,
		Broadcast:    h.Broadcast(),
		CIAddr:       h.CIAddr,
		YIAddr:       h.YIAddr,
		SIAddr:       h.SIAddr,
		GIAddr:       h.GIAddr,
		HardwareAddr: h.HardwareAddr().String(),
		ServerName:   r.ServerName,
		BootFile:     r.BootFile,
	}
}

// Render writes r as aligned text.
func Render(w io.Writer, r Result, v View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "source:\t%s\n", r.Source)
	if !r.Time.IsZero() {
		fmt.Fprintf(tw, "time:\t%s\n", r.Time.Format(time.RFC3339Nano))
	}
	if r.Header != nil {
		h := newHeaderJSON(r)
		fmt.Fprintf(tw, "header:\top=%d xid=%s ciaddr=%s yiaddr=%s siaddr=%s giaddr=%s chaddr=%s\n",
			h.Op, h.XID, h.CIAddr, h.YIAddr, h.SIAddr, h.GIAddr, h.HardwareAddr)
		if h.ServerName != "" || h.BootFile != "" {
			fmt.Fprintf(tw, "\tsname=%q file=%q\n", h.ServerName, h.BootFile)
		}
	}
	if r.Err != nil {
		fmt.Fprintf(tw, "error:\t%v\n", r.Err)
	}
	for _, o := range r.Options {
		value := ""
		if o.Value != nil {
			value = o.Value.String()
		}
		fmt.Fprintf(tw, "%4d\t%s\t%s\n", uint8(o.Code), o.Code, value)
	}
	if v.Report {
		for _, s := range r.Sections {
			rep := s.Report
			fmt.Fprintf(tw, "report %s:\tlength=%d consumed=%d ended=%t skipped=%d\n",
				s.Region, rep.Length, rep.Consumed, rep.Ended, len(rep.Skipped))
			for _, sk := range rep.Skipped {
				fmt.Fprintf(tw, "\tskipped offset=%d tag=%d len=%d reason=%s\n",
					sk.Offset, sk.Tag, sk.Length, options.SkipReason(sk.Err))
			}
			if rep.Err != nil {
				fmt.Fprintf(tw, "\tstopped: %v\n", rep.Err)
			}
		}
	}
	switch {
	case r.Validation != nil:
		fmt.Fprintf(tw, "validation:\t%v\n", r.Validation)
	case r.Truncated():
		fmt.Fprintf(tw, "status:\t%s\n", "truncated")
	}
	return tw.Flush()
}

// RenderCatalog writes catalog entries as aligned text.
func RenderCatalog(w io.Writer, title string, entries []options.CatalogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", strings.ToUpper(title))
	for _, e := range entries {
		fmt.Fprintf(tw, "%4d\t%s\t%s\n", e.Code, e.Name, e.Shape)
	}
	return tw.Flush()
}
