// Package fileserver stores extracted frame images on an SMB share so the
// calling backend can serve them as thumbnails. Each upload opens a short
// lived session; the share is not held open between requests.
package fileserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/hirochachacha/go-smb2"

	"placepipe/internal/logging"
)

// Config holds share connection settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	ShareName string
	RemoteDir string
}

// Client uploads artifacts to an SMB share.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a share Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Port <= 0 {
		cfg.Port = 445
	}
	cfg.RemoteDir = strings.Trim(cfg.RemoteDir, "/")
	return &Client{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "fileserver"),
	}
}

// UploadBytes writes data to the share under a generated name and returns
// the share-relative path. The extension should include the leading dot.
func (c *Client) UploadBytes(ctx context.Context, data []byte, extension string) (string, error) {
	name := uuid.New().String() + extension
	remotePath := name
	if c.cfg.RemoteDir != "" {
		remotePath = path.Join(c.cfg.RemoteDir, name)
	}

	err := c.withShare(ctx, func(share *smb2.Share) error {
		if c.cfg.RemoteDir != "" {
			if err := share.MkdirAll(c.cfg.RemoteDir, 0o755); err != nil {
				return fmt.Errorf("create remote directory: %w", err)
			}
		}
		if err := share.WriteFile(remotePath, data, 0o644); err != nil {
			return fmt.Errorf("write remote file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "artifact uploaded",
		logging.String("remote_path", remotePath),
		logging.Int("bytes", len(data)))
	return remotePath, nil
}

// Delete removes a previously uploaded file.
func (c *Client) Delete(ctx context.Context, remotePath string) error {
	return c.withShare(ctx, func(share *smb2.Share) error {
		if err := share.Remove(remotePath); err != nil {
			return fmt.Errorf("remove remote file: %w", err)
		}
		return nil
	})
}

// Exists reports whether a file is present on the share.
func (c *Client) Exists(ctx context.Context, remotePath string) (bool, error) {
	var exists bool
	err := c.withShare(ctx, func(share *smb2.Share) error {
		_, statErr := share.Stat(remotePath)
		exists = statErr == nil
		return nil
	})
	return exists, err
}

func (c *Client) withShare(ctx context.Context, fn func(*smb2.Share) error) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to file server %s: %w", addr, err)
	}
	defer conn.Close()

	smbDialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     c.cfg.Username,
			Password: c.cfg.Password,
		},
	}
	session, err := smbDialer.DialContext(ctx, conn)
	if err != nil {
		return fmt.Errorf("smb session: %w", err)
	}
	defer session.Logoff()

	share, err := session.Mount(c.cfg.ShareName)
	if err != nil {
		return fmt.Errorf("mount share %s: %w", c.cfg.ShareName, err)
	}
	defer share.Umount()

	return fn(share.WithContext(ctx))
}
