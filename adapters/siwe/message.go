package siwe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/layer-3/seedvault/core"
)

const headerSuffix = " wants you to sign in with your Ethereum account:"

// ParseMessage reads an EIP-4361 message. Only the fields the service needs
// are kept; unknown fields and resources are ignored.
func ParseMessage(message string) (*core.WalletMessage, error) {
	lines := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	if len(lines) < 2 || !strings.HasSuffix(lines[0], headerSuffix) {
		return nil, fmt.Errorf("missing header: %w", core.ErrInvalidMessage)
	}

	msg := &core.WalletMessage{
		Domain:  strings.TrimSuffix(lines[0], headerSuffix),
		Address: strings.TrimSpace(lines[1]),
	}
	if msg.Domain == "" {
		return nil, fmt.Errorf("missing domain: %w", core.ErrInvalidMessage)
	}
	if !common.IsHexAddress(msg.Address) {
		return nil, fmt.Errorf("bad address %q: %w", msg.Address, core.ErrInvalidMessage)
	}

	var statement []string
	inResources := false
	for _, line := range lines[2:] {
		if inResources {
			continue
		}
		key, value, isField := strings.Cut(line, ": ")
		if !isField {
			if line == "Resources:" {
				inResources = true
			} else if line != "" {
				statement = append(statement, line)
			}
			continue
		}

		var err error
		switch key {
		case "URI":
			msg.URI = value
		case "Version":
			msg.Version = value
		case "Chain ID":
			msg.ChainID, err = strconv.ParseInt(value, 10, 64)
		case "Nonce":
			msg.Nonce = value
		case "Issued At":
			msg.IssuedAt, err = time.Parse(time.RFC3339, value)
		case "Expiration Time":
			msg.ExpirationTime, err = time.Parse(time.RFC3339, value)
		case "Not Before":
			msg.NotBefore, err = time.Parse(time.RFC3339, value)
		case "Request ID":
		default:
			statement = append(statement, line)
		}
		if err != nil {
			return nil, fmt.Errorf("bad %s: %w", strings.ToLower(key), core.ErrInvalidMessage)
		}
	}
	msg.Statement = strings.Join(statement, "\n")

	if msg.Nonce == "" {
		return nil, fmt.Errorf("missing nonce: %w", core.ErrInvalidMessage)
	}
	if msg.Version != "1" {
		return nil, fmt.Errorf("unsupported version %q: %w", msg.Version, core.ErrInvalidMessage)
	}

	return msg, nil
}
