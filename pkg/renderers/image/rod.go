package image

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ChromeConfig controls how the headless browser is found or launched.
type ChromeConfig struct {
	// Bin is the browser executable. Empty lets the launcher locate or
	// download one.
	Bin string
	// ControlURL connects to an already running browser instead of launching.
	ControlURL string
	// Headless defaults to true through DefaultChromeConfig.
	Headless bool
	Width    int
	Height   int
}

// DefaultChromeConfig returns an A4-ish portrait viewport in headless mode.
func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{Headless: true, Width: 1024, Height: 1400}
}

// RodCapturer screenshots HTML in a shared headless Chrome. The browser is
// started on first use and reused until Close.
type RodCapturer struct {
	cfg    ChromeConfig
	logger *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodCapturer returns a capturer for cfg. Nothing is launched yet.
func NewRodCapturer(cfg ChromeConfig, logger *zap.Logger) *RodCapturer {
	if cfg.Width <= 0 {
		cfg.Width = DefaultChromeConfig().Width
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultChromeConfig().Height
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodCapturer{cfg: cfg, logger: logger}
}

// Capture loads document into a fresh page and returns a full-page PNG.
func (c *RodCapturer) Capture(ctx context.Context, document []byte) ([]byte, error) {
	browser, err := c.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("image: create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			c.logger.Debug("close page", zap.Error(closeErr))
		}
	}()
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.cfg.Width,
		Height:            c.cfg.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		c.logger.Warn("set viewport", zap.Error(err))
	}

	if err := page.SetDocumentContent(string(document)); err != nil {
		return nil, fmt.Errorf("image: load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("image: wait for load: %w", err)
	}

	shot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("image: screenshot: %w", err)
	}
	return shot, nil
}

func (c *RodCapturer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return c.browser, nil
	}

	controlURL := c.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(c.cfg.Headless)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("image: launch chrome: %w", err)
		}
		controlURL = url
		c.launcher = l
		c.logger.Debug("chrome launched", zap.String("control_url", controlURL))
	}

	// The browser outlives the export that started it, so it is not bound
	// to ctx.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		c.killLauncher()
		return nil, fmt.Errorf("image: connect to chrome: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = browser.Close()
		c.killLauncher()
		return nil, err
	}
	c.browser = browser
	return browser, nil
}

// Close shuts the browser down. A later Capture starts a new one.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	c.killLauncher()
	if err != nil {
		return errors.Join(errors.New("image: close browser"), err)
	}
	return nil
}

func (c *RodCapturer) killLauncher() {
	if c.launcher == nil {
		return
	}
	c.launcher.Kill()
	c.launcher.Cleanup()
	c.launcher = nil
}
