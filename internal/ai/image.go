// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// imageSize is the fixed 16:9-oriented resolution for cover images.
const imageSize = "1792x1024"

// GenerateCoverImage requests one cover illustration for a topic from the
// image generations deployment. Returns the decoded image bytes and their
// MIME content type. Failures carry the same tagged taxonomy as Generate.
func (c *Client) GenerateCoverImage(ctx context.Context, topic string) ([]byte, string, error) {
	if topic == "" {
		return nil, "", &Error{Kind: KindValidation, Message: "topic must not be empty"}
	}

	missing := c.config.missingChatFields()
	// The deployment field differs for image calls; chat deployment is not
	// required here.
	missing = removeField(missing, "deployment")
	if c.config.ImageDeployment == "" {
		missing = append(missing, "image_deployment")
	}
	if len(missing) > 0 {
		return nil, "", &Error{Kind: KindConfiguration, Message: "image generation not configured", Missing: missing}
	}

	endpoint, err := c.imageURL()
	if err != nil {
		return nil, "", err
	}

	body := imageRequest{
		Prompt:       coverPrompt(topic),
		N:            1,
		Size:         imageSize,
		OutputFormat: "png",
	}

	raw, err := c.doJSON(ctx, endpoint, body)
	if err != nil {
		return nil, "", err
	}

	var resp imageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", &Error{Kind: KindMalformedOutput, Message: "image response is not valid JSON", Raw: string(raw), Err: err}
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, "", &Error{Kind: KindEmptyOutput, Message: "no image returned"}
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", &Error{Kind: KindMalformedOutput, Message: "image payload is not valid base64", Err: err}
	}

	return img, "image/png", nil
}

// imageURL builds the image generations URL.
func (c *Client) imageURL() (string, error) {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &Error{Kind: KindInvalidEndpoint, Message: fmt.Sprintf("endpoint %q is not an absolute URL", c.config.Endpoint), Err: err}
	}
	return fmt.Sprintf("%s/openai/deployments/%s/images/generations?api-version=%s",
		c.config.Endpoint, c.config.ImageDeployment, url.QueryEscape(c.config.APIVersion)), nil
}

// SupportsImages reports whether an image deployment is configured.
func (c *Client) SupportsImages() bool {
	return c.config.ImageDeployment != ""
}

// removeField drops one entry from a missing-fields list.
func removeField(fields []string, name string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != name {
			out = append(out, f)
		}
	}
	return out
}

// --- wire types for the image generations API ---

type imageRequest struct {
	Prompt       string `json:"prompt"`
	N            int    `json:"n"`
	Size         string `json:"size"`
	OutputFormat string `json:"output_format"`
}

type imageResponse struct {
	Data []imageDatum `json:"data"`
}

type imageDatum struct {
	B64JSON string `json:"b64_json"`
}
