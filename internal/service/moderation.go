package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"campuseats/internal/storage"
)

// defaultRejectionReason is shown when the classifier rejects a post
// without explaining itself.
const defaultRejectionReason = "This post doesn't appear to be about food"

// maxModerationImageBytes caps how much image data is inlined into a
// classification request.
const maxModerationImageBytes = 4 << 20

// ModerationResult is the classifier's verdict on a candidate post.
type ModerationResult struct {
	Allowed bool
	Reason  string
}

// Moderator gates food post creation on an external content classifier.
// The post's title, description, and image (when present) are all sent.
//
// The gate fails open: when the classifier is unconfigured, unreachable, or
// returns something unparseable, the post is allowed. Availability is
// prioritized over strict enforcement.
type Moderator interface {
	Check(ctx context.Context, title, description, imageID string) ModerationResult
}

// classifierVerdict is the JSON object the classifier is prompted to emit
// inside its free-form text response.
type classifierVerdict struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason"`
}

// generativeModerator calls a generative-AI text endpoint and extracts a
// JSON verdict from its reply.
type generativeModerator struct {
	apiKey   string
	endpoint string
	store    storage.ObjectStore
	client   *http.Client
}

// NewGenerativeModerator creates a moderator backed by a generative
// classification endpoint. An empty apiKey disables the gate entirely.
// store resolves post image keys so the image can accompany the prompt.
func NewGenerativeModerator(endpoint, apiKey string, store storage.ObjectStore) Moderator {
	return &generativeModerator{
		apiKey:   apiKey,
		endpoint: endpoint,
		store:    store,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Check classifies a candidate post.
func (m *generativeModerator) Check(ctx context.Context, title, description, imageID string) ModerationResult {
	if m.apiKey == "" {
		return ModerationResult{Allowed: true}
	}

	parts := []generativePart{{Text: buildModerationPrompt(title, description, imageID != "")}}
	if blob := m.fetchImage(ctx, imageID); blob != nil {
		parts = append(parts, generativePart{InlineData: blob})
	}

	text, err := m.generate(ctx, parts)
	if err != nil {
		log.Printf("moderation unavailable, allowing post: %v", err)
		return ModerationResult{Allowed: true}
	}

	verdict, ok := parseVerdict(text)
	if !ok {
		log.Printf("moderation response unparseable, allowing post")
		return ModerationResult{Allowed: true}
	}

	if verdict.IsValid {
		return ModerationResult{Allowed: true}
	}
	reason := verdict.Reason
	if reason == "" {
		reason = defaultRejectionReason
	}
	return ModerationResult{Allowed: false, Reason: reason}
}

func buildModerationPrompt(title, description string, hasImage bool) string {
	var b strings.Builder
	b.WriteString("You moderate a campus free-food sharing board. ")
	b.WriteString("Decide whether the following post is a genuine announcement of free food available on campus. ")
	b.WriteString("Reject spam, harassment, and posts not about food. ")
	if hasImage {
		b.WriteString("The poster's photo is attached; it must show food too. ")
	}
	b.WriteString("Respond with only a JSON object: {\"isValid\": boolean, \"reason\": string}.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	return b.String()
}

// fetchImage resolves an image key and downloads its bytes for inlining.
// Any failure degrades to a text-only classification.
func (m *generativeModerator) fetchImage(ctx context.Context, imageID string) *generativeBlob {
	if imageID == "" || m.store == nil {
		return nil
	}

	imageURL, err := m.store.ResolveURL(ctx, imageID)
	if err != nil || imageURL == "" {
		log.Printf("moderation image %s unavailable, classifying text only: %v", imageID, err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil
	}
	resp, err := m.client.Do(req)
	if err != nil {
		log.Printf("moderation image %s fetch failed, classifying text only: %v", imageID, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("moderation image %s fetch returned status %d, classifying text only", imageID, resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxModerationImageBytes))
	if err != nil || len(data) == 0 {
		return nil
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(imageID)); byExt != "" {
			mimeType = byExt
		} else {
			mimeType = "image/jpeg"
		}
	}

	return &generativeBlob{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// generativeRequest mirrors the generateContent wire format.
type generativeRequest struct {
	Contents []generativeContent `json:"contents"`
}

type generativeContent struct {
	Parts []generativePart `json:"parts"`
}

type generativePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *generativeBlob `json:"inlineData,omitempty"`
}

type generativeBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generativeResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generativePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends the prompt parts and returns the model's raw text reply.
func (m *generativeModerator) generate(ctx context.Context, parts []generativePart) (string, error) {
	payload, err := json.Marshal(generativeRequest{
		Contents: []generativeContent{{Parts: parts}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"?key="+m.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generativeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode classifier response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("classifier returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// parseVerdict extracts the first JSON object from free-form model text.
// Models habitually wrap the object in prose or markdown fences.
func parseVerdict(text string) (classifierVerdict, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return classifierVerdict{}, false
	}

	var verdict classifierVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdict); err != nil {
		return classifierVerdict{}, false
	}
	return verdict, true
}
