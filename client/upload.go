// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/go-dify/dify"
)

// buildMultipart assembles a multipart/form-data body with a "file" part and
// a "user" field. The file's content type and extension are sniffed from its
// bytes; name is the stem of the generated file name.
func buildMultipart(file []byte, user, name string) (body *bytes.Buffer, contentType string, err error) {
	detected := mimetype.Detect(file)

	body = &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+detected.Extension()+`"`)
	header.Set("Content-Type", detected.String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", NewValidationError("building multipart body: %v", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, "", NewValidationError("building multipart body: %v", err)
	}
	if err := writer.WriteField("user", user); err != nil {
		return nil, "", NewValidationError("building multipart body: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", NewValidationError("building multipart body: %v", err)
	}

	return body, writer.FormDataContentType(), nil
}

// postMultipart sends a multipart upload and reconciles the response into T.
func postMultipart[T any](ctx context.Context, c *Client, path apiPath, body *bytes.Buffer, contentType string, opts ...RequestOption) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(path), body)
	if err != nil {
		return nil, NewValidationError("building request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.send(ctx, req, applyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return reconcile[T](resp)
}

// FilesUpload uploads an image for use in later messages. The content type
// is sniffed from the file bytes; bytes that are not a recognized image are
// rejected before any network traffic.
func (c *Client) FilesUpload(ctx context.Context, req *dify.FilesUploadRequest, opts ...RequestOption) (*dify.FilesUploadResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if len(req.File) == 0 {
		return nil, NewValidationError("file is empty")
	}

	if detected := mimetype.Detect(req.File); !strings.HasPrefix(detected.String(), "image/") {
		return nil, NewValidationError("file is not a recognized image (detected %s)", detected.String())
	}

	body, contentType, err := buildMultipart(req.File, req.User, "image_file")
	if err != nil {
		return nil, err
	}
	return postMultipart[dify.FilesUploadResponse](ctx, c, pathFilesUpload, body, contentType, opts...)
}

// AudioToText transcribes an audio file. The content type is sniffed from
// the file bytes; bytes that are not recognized audio are rejected before
// any network traffic.
func (c *Client) AudioToText(ctx context.Context, req *dify.AudioToTextRequest, opts ...RequestOption) (*dify.AudioToTextResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if len(req.File) == 0 {
		return nil, NewValidationError("file is empty")
	}

	if detected := mimetype.Detect(req.File); !strings.HasPrefix(detected.String(), "audio/") {
		return nil, NewValidationError("file is not recognized audio (detected %s)", detected.String())
	}

	body, contentType, err := buildMultipart(req.File, req.User, "audio_file")
	if err != nil {
		return nil, err
	}
	return postMultipart[dify.AudioToTextResponse](ctx, c, pathAudioToText, body, contentType, opts...)
}
