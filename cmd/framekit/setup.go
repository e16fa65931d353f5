package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/framekit/pkg/framekit"
)

// session is the configuration resolved from the config file and flags
type session struct {
	cfg      *framekit.Config
	profile  *framekit.Profile
	registry *framekit.Registry
}

func loadSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	profileName, _ := cmd.Flags().GetString("profile")
	lengths, _ := cmd.Flags().GetStringSlice("length")

	cfg, err := framekit.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		cfg.Profile.Name = profileName
		cfg.Profile.Custom = false
	}

	specs, err := parseLengths(lengths)
	if err != nil {
		return nil, err
	}
	cfg.Messages = append(cfg.Messages, specs...)

	profile, err := cfg.Profile.BuildProfile()
	if err != nil {
		return nil, err
	}
	registry, err := cfg.BuildRegistry()
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, profile: profile, registry: registry}, nil
}

// lookup returns the length source for the session's profile, nil when the
// profile carries its own length field
func (s *session) lookup() framekit.LengthFunc {
	if s.profile.HasLength() {
		return nil
	}
	return s.registry.Length
}

func parseLengths(values []string) ([]framekit.MessageSpec, error) {
	specs := make([]framekit.MessageSpec, 0, len(values))
	for _, v := range values {
		id, length, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --length %q: want msg_id=length", v)
		}
		msgID, err := strconv.ParseUint(strings.TrimSpace(id), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid message id in --length %q: %w", v, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(length))
		if err != nil {
			return nil, fmt.Errorf("invalid length in --length %q: %w", v, err)
		}
		specs = append(specs, framekit.MessageSpec{ID: uint8(msgID), Length: n})
	}
	return specs, nil
}
