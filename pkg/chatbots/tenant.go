package chatbots

import (
	"strings"

	"github.com/google/uuid"
)

const (
	tenantIDPrefix = "tenant_"
	tenantIDLength = 12
)

// MintTenantID generates the opaque identifier the external backend
// uses to isolate one chatbot's traffic from another's.
func MintTenantID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return tenantIDPrefix + raw[:tenantIDLength]
}
