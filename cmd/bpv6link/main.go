// Command bpv6link dials or listens for a single TCPCL session and forwards
// bundles between the link and stdin/stdout. It exists to exercise the
// config/logging ambient stack around the protocol engine; it carries no
// protocol logic of its own.
package main

import (
	"io"
	"io/ioutil"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func showHelp() {
	io.WriteString(os.Stderr, "bpv6link [send|recv] CONFIG.toml\n\n")
	io.WriteString(os.Stderr, "  send  reads a payload from stdin and sends it as a bundle\n")
	io.WriteString(os.Stderr, "  recv  listens and writes each delivered bundle's payload to stdout\n\n")
	io.WriteString(os.Stderr, "Examples:\n")
	io.WriteString(os.Stderr, "  bpv6link send link.toml <<< \"hello world\"\n")
	io.WriteString(os.Stderr, "  bpv6link recv link.toml > received.bin\n")
}

func main() {
	args := os.Args[1:]
	if len(args) != 2 {
		showHelp()
		os.Exit(1)
	}

	cfg, cfgErrs, err := LoadConfig(args[1])
	if err != nil {
		log.WithError(err).Fatal("loading configuration failed")
	}

	configureLogging(cfg.Logging)

	link, err := dialOrListen(cfg)
	if err != nil {
		log.WithError(err).Fatal("establishing session failed")
	}
	defer link.Close()

	watcher, err := watchConfig(args[1], cfgErrs)
	if err == nil {
		defer watcher.Close()
	} else {
		log.WithError(err).Warn("config hot-reload disabled")
	}

	switch args[0] {
	case "send":
		if err := runSend(link, cfg); err != nil {
			log.WithError(err).Fatal("send failed")
		}

	case "recv":
		runRecv(link)

	default:
		showHelp()
		os.Exit(1)
	}
}

// runSend reads a full payload from stdin and sends it as a single bundle
// addressed to cfg.Link.Destination.
func runSend(link Link, cfg *Config) error {
	payload, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	dest, err := eid.Parse(cfg.Link.Destination)
	if err != nil {
		return err
	}
	source, err := eid.Parse(cfg.Link.Source)
	if err != nil {
		return err
	}

	primary := bpv6.Primary{
		Flags:       bpv6.SingletonDestination,
		Destination: dest,
		Source:      source,
		ReportTo:    source,
		Creation:    bpv6.CreationTimestampFromTime(time.Now()),
		Lifetime:    uint64(cfg.Link.LifetimeSeconds),
	}

	view := bpv6.NewView(primary)
	view.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: payload}})

	return link.Send(view)
}

// runRecv writes every delivered bundle's payload to stdout until the link
// is closed. Fragments are held in a FragmentManager and only written once
// reassembled; whole bundles pass straight through.
func runRecv(link Link) {
	fm := bpv6.NewFragmentManager()

	for rec := range link.Channel() {
		complete, assembled, err := fm.AddFragment(rec.View)
		if err != nil {
			log.WithError(err).Warn("fragment reassembly failed")
			continue
		}
		if !complete {
			log.WithField("pending", fm.Pending()).Debug("fragment held, awaiting the rest of the bundle")
			continue
		}

		payload, ok := assembled.Payload()
		if !ok {
			log.Warn("delivered bundle has no payload block")
			continue
		}
		if _, err := os.Stdout.Write(payload.Data); err != nil {
			log.WithError(err).Error("writing payload to stdout failed")
		}
	}
}
