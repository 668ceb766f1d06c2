package models

import "fmt"

// WalletAddress is a payout address attached to a farm.
type WalletAddress struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
}

// FarmRecord is a farm as reported by the registry.
type FarmRecord struct {
	ID              FarmID          `json:"id"`
	ThreebotID      int64           `json:"threebot_id"`
	IyoOrganization string          `json:"iyo_organization"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Location        Location        `json:"location"`
	WalletAddresses []WalletAddress `json:"wallet_addresses"`
}

// Validate checks the identity field of a farm.
func (f *FarmRecord) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: farm id is required (name %q)", ErrMalformedRecord, f.Name)
	}
	return nil
}
