package ai

import "strings"

func ParseModelSpec(modelSpec string) (provider string, model string, err error) {
	parts := strings.SplitN(modelSpec, ":", 2)
	if len(parts) != 2 {
		return "", modelSpec, ErrInvalidModelFormat
	}
	return parts[0], parts[1], nil
}
