package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

type groupMember struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type groupConfig struct {
	Providers []groupMember `json:"providers"`
}

type groupEntry struct {
	provider IProvider
	model    string
}

// groupProvider asks its members in order and returns the first answer.
// A member model overrides the model passed to Generate.
type groupProvider struct {
	items []groupEntry
}

func newGroupProvider(args interface{}) (IProvider, error) {
	var cfg groupConfig
	if err := decodeConfig(args, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("group provider needs at least one member")
	}
	items := make([]groupEntry, 0, len(cfg.Providers))
	for i, member := range cfg.Providers {
		if strings.EqualFold(strings.TrimSpace(member.Provider), "group") {
			return nil, fmt.Errorf("group member %d: nested groups are not supported", i)
		}
		p, err := NewProvider(member.Provider, member.Data)
		if err != nil {
			return nil, fmt.Errorf("group member %d: %w", i, err)
		}
		items = append(items, groupEntry{provider: p, model: member.Model})
	}
	return &groupProvider{items: items}, nil
}

func (g *groupProvider) Name() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		names = append(names, item.provider.Name())
	}
	return strings.Join(names, "|")
}

func (g *groupProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	var lastErr error
	unavailable := 0
	for i, item := range g.items {
		m := model
		if item.model != "" {
			m = item.model
		}
		res, err := item.provider.Generate(ctx, m, prompt)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, appErr.ErrUnavailable) {
			unavailable++
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("group member failed",
			zap.Int("index", i),
			zap.String("provider", item.provider.Name()),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	if unavailable == len(g.items) {
		return "", fmt.Errorf("%w: every group member unavailable: %v", appErr.ErrUnavailable, lastErr)
	}
	return "", lastErr
}

func init() {
	Register("group", newGroupProvider)
}
