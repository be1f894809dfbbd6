package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// anthropicClient implements LLMClient on the Anthropic Messages API.
// Concurrent calls are capped by a semaphore and paced by a token-bucket
// limiter so parallel generation cannot trip provider rate limits.
type anthropicClient struct {
	cfg      LLMConfig
	client   *anthropic.Client
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	observer Observer
}

// NewAnthropicClient creates an LLMClient backed by Anthropic. Extra
// request options are appended after the configured API key, which lets
// tests point the client at a local server.
func NewAnthropicClient(cfg LLMConfig, observer Observer, opts ...option.RequestOption) (LLMClient, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}, opts...)
	client := anthropic.NewClient(reqOpts...)

	var sem *semaphore.Weighted
	if cfg.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls))
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &anthropicClient{
		cfg:      cfg,
		client:   &client,
		sem:      sem,
		limiter:  limiter,
		observer: observerOrNoop(observer),
	}, nil
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := taskParams(c.cfg, req)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	text, err := c.call(ctx, req, temp, maxTok)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrTimeout
		} else if isConnectionError(err) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		} else if ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", ErrRetryExhausted, err)
		}
		c.report(req.Task, latency, err)
		return nil, err
	}

	c.report(req.Task, latency, nil)
	return &GenerateResponse{
		Text:      text,
		Model:     c.cfg.AnthropicModel,
		LatencyMs: latency,
	}, nil
}

func (c *anthropicClient) call(ctx context.Context, req GenerateRequest, temp float64, maxTok int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer c.sem.Release(1)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.AnthropicModel),
		MaxTokens:   int64(maxTok),
		Temperature: anthropic.Float(temp),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

func (c *anthropicClient) report(task TaskType, latency int64, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Provider:  ProviderAnthropic,
		Model:     c.cfg.AnthropicModel,
		LatencyMs: latency,
		Success:   err == nil,
		ErrorCode: ErrorCode(err),
	})
}

// Available reports whether a key is configured. The Messages API has no
// free health endpoint, so reachability is discovered on the first call.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.AnthropicAPIKey != ""
}
