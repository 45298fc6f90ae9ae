package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// DecodeResponse decodes a JSON response into the target structure.
// provider names the remote service in returned errors.
func DecodeResponse(resp *http.Response, provider string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewIOError("read", "response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		apiErr := errors.NewAPIError(provider, resp.StatusCode, msg)
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.Redacted()
		}
		return apiErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewParseError("json", "response", "malformed response body", err)
	}

	return nil
}
