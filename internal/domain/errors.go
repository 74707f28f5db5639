package domain

import (
	"fmt"
	"strings"

	appErrors "holoupdate/internal/errors"
)

func invalidChannelError(label string) error {
	msg := fmt.Sprintf("invalid channel: %s. Available channels: %s", label, strings.Join(channelLabels(), ", "))
	return appErrors.New(appErrors.CodeInvalidChannel, msg, nil)
}
