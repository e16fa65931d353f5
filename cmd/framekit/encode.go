package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/framekit/pkg/framekit"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a frame and print it as hex",
		Args:  cobra.NoArgs,
		RunE:  runEncode,
	}
	cmd.Flags().Uint8("msg-id", 0, "Message id")
	cmd.Flags().String("payload", "", "Payload as hex")
	cmd.Flags().Uint8("seq", 0, "Sequence number")
	cmd.Flags().Uint8("sys", 0, "System id")
	cmd.Flags().Uint8("comp", 0, "Component id")
	cmd.Flags().Uint8("pkg", 0, "Package id")
	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	var h framekit.Header
	h.MsgID, _ = cmd.Flags().GetUint8("msg-id")
	h.Sequence, _ = cmd.Flags().GetUint8("seq")
	h.SystemID, _ = cmd.Flags().GetUint8("sys")
	h.ComponentID, _ = cmd.Flags().GetUint8("comp")
	h.PackageID, _ = cmd.Flags().GetUint8("pkg")

	payloadHex, _ := cmd.Flags().GetString("payload")
	payload, err := decodeHex(payloadHex)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if !s.profile.HasLength() && len(s.registry.Specs()) > 0 {
		if err := s.registry.CheckPayload(h.MsgID, payload); err != nil {
			return err
		}
	}

	frame, err := framekit.Encode(s.profile, h, payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.ToUpper(hex.EncodeToString(frame)))
	return err
}

// decodeHex accepts hex with optional whitespace, colons or a 0x prefix
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
