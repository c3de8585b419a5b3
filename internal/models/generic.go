package models

import (
	"fmt"
	"strings"
)

// ContentType names a model that generic relations can point at.
type ContentType struct {
	ID       int64  `json:"id"`
	AppLabel string `json:"app_label"`
	Model    string `json:"model"`
}

func (ct ContentType) Key() string {
	return ct.AppLabel + "." + ct.Model
}

// ParseContentTypeKey splits "app_label.model".
func ParseContentTypeKey(key string) (appLabel, model string, err error) {
	appLabel, model, ok := strings.Cut(strings.ToLower(strings.TrimSpace(key)), ".")
	if !ok || appLabel == "" || model == "" {
		return "", "", fmt.Errorf("content type %q must look like app_label.model", key)
	}
	return appLabel, model, nil
}

type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// TaggedItem applies a Tag to any object identified by (content type, id).
type TaggedItem struct {
	ID            int64       `json:"id"`
	Tag           Tag         `json:"tag"`
	ContentType   ContentType `json:"content_type"`
	ObjectID      int64       `json:"object_id"`
	ContentObject any         `json:"content_object"`
}

type LikedItem struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user"`
	ContentType   ContentType `json:"content_type"`
	ObjectID      int64       `json:"object_id"`
	ContentObject any         `json:"content_object"`
}
