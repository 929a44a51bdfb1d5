package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/llm"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
)

// defaultLineConfidence applies when the model omits a per-line confidence.
const defaultLineConfidence = 0.8

// Name implements ocr.Engine.
func (c *Client) Name() string { return "openai" }

// Recognize implements ocr.Engine by asking a vision model to transcribe
// the page. Only raster images are sent; PDFs are left to other engines.
func (c *Client) Recognize(ctx context.Context, req ocr.Request) ([]ocr.TextBlock, error) {
	if !req.MediaType.IsImage() {
		return nil, fmt.Errorf("%w: %s", ocr.ErrUnsupportedInput, req.MediaType)
	}
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.transcribe.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"media_type", req.MediaType,
		"bytes", len(req.Content),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	dataURL := "data:" + req.MediaType.MIME() + ";base64," + base64.StdEncoding.EncodeToString(req.Content)
	chatReq := goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: llm.BuildSystemPrompt(),
			},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: llm.BuildUserPrompt("")},
					{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: goopenai.ImageURLDetailHigh,
					}},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.logger.Error("llm.transcribe.api_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.transcribe.no_choices", "req_id", rid)
		return nil, fmt.Errorf("no choices in openai response")
	}

	content := llm.StripCodeFence(resp.Choices[0].Message.Content)
	tr, err := c.decode(rid, []byte(content))
	if err != nil {
		return nil, err
	}

	blocks := toBlocks(tr)
	c.logger.Info("llm.transcribe.ok",
		"req_id", rid,
		"lines", len(tr.Lines),
		"signature", tr.Signature != nil && tr.Signature.Present,
		"tokens", resp.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return blocks, nil
}

// decode validates strictly first, then retries once after sanitizing.
func (c *Client) decode(rid string, raw []byte) (llm.Transcription, error) {
	if err := c.schema.Validate(raw); err != nil {
		cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(raw, c.logger)
		if sErr != nil {
			c.logger.Error("llm.transcribe.sanitize_failed", "req_id", rid, "error", sErr)
			return llm.Transcription{}, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := c.schema.Validate(cleaned); vErr != nil {
			c.logger.Error("llm.transcribe.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(raw))
			return llm.Transcription{}, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("llm.transcribe.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		raw = cleaned
	}

	var out llm.Transcription
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Transcription{}, fmt.Errorf("unmarshal transcription: %w", err)
	}
	return out, nil
}

func toBlocks(tr llm.Transcription) []ocr.TextBlock {
	blocks := make([]ocr.TextBlock, 0, len(tr.Lines)+1)
	lineByPage := map[int]int{}
	for _, l := range tr.Lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		page := l.Page
		if page < 1 {
			page = 1
		}
		lineByPage[page]++
		conf := l.Confidence
		if conf <= 0 {
			conf = defaultLineConfidence
		}
		blocks = append(blocks, ocr.TextBlock{
			Text:       text,
			Confidence: conf,
			Page:       page,
			Line:       lineByPage[page],
			Box:        ocr.BoundingBox{Y: lineByPage[page], W: len([]rune(text)), H: 1},
			Kind:       ocr.KindText,
		})
	}
	if tr.Signature != nil && tr.Signature.Present {
		conf := tr.Signature.Confidence
		if conf <= 0 {
			conf = defaultLineConfidence
		}
		blocks = append(blocks, ocr.TextBlock{
			Text:       "signature",
			Confidence: conf,
			Page:       1,
			Line:       lineByPage[1] + 1,
			Kind:       ocr.KindSignature,
		})
	}
	return blocks
}
