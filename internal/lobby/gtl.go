package lobby

import (
	"context"
)

type gtlRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	UUID  string `json:"uuid,omitempty"`
}

// GTLVerifyOwnership proves ownership of the gold behind a transfer code and
// returns the transferable amount.
func (c *Client) GTLVerifyOwnership(ctx context.Context, code, email string) (int, error) {
	var res struct {
		Amount int `json:"amount"`
	}
	if err := c.http.Post(ctx, "/api/gtl/verifyOwnership", gtlRequest{Code: code, Email: email}, &res); err != nil {
		return 0, err
	}
	return res.Amount, nil
}

// GTLFindTargets searches the avatars named name that may receive the gold.
func (c *Client) GTLFindTargets(ctx context.Context, code, email, name string) (*GTLTargets, error) {
	var res GTLTargets
	if err := c.http.Post(ctx, "/api/gtl/findTargets", gtlRequest{Code: code, Email: email, Name: name}, &res); err != nil {
		return nil, err
	}
	if res.TransferTargets == nil {
		res.TransferTargets = map[string]string{}
	}
	return &res, nil
}

// GTLTransfer moves the gold to the avatar with targetAvatarID.
func (c *Client) GTLTransfer(ctx context.Context, code, email, targetAvatarID string) (TransferState, error) {
	var res struct {
		State TransferState `json:"state"`
	}
	if err := c.http.Post(ctx, "/api/gtl/transfer", gtlRequest{Code: code, Email: email, UUID: targetAvatarID}, &res); err != nil {
		return "", err
	}
	return res.State, nil
}
