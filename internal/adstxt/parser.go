package adstxt

import (
	"strings"

	"github.com/aleister1102/adstrace/internal/models"
)

// ParseDeclarations parses the line-oriented, comma-separated declarations
// format into entries. Blank lines, comment lines, and lines with fewer than
// three fields are dropped. Inline comments after '#' are stripped. Variable
// records (key=value lines such as contact= or subdomain=) have fewer than
// three comma fields and fall out naturally.
func ParseDeclarations(content string) []models.DeclarationEntry {
	if content == "" {
		return nil
	}

	var entries []models.DeclarationEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}

		issuer := strings.ToLower(strings.TrimSpace(parts[0]))
		participant := strings.ToLower(strings.TrimSpace(parts[1]))
		roleToken := strings.ToUpper(strings.TrimSpace(parts[2]))
		if issuer == "" || participant == "" || roleToken == "" {
			continue
		}

		entries = append(entries, models.DeclarationEntry{
			IssuerDomain:  issuer,
			ParticipantID: participant,
			Role:          parseRole(roleToken),
		})
	}
	return entries
}

// parseRole maps the third field to a relationship role. Anything that does
// not start with DIRECT counts as RESELLER, matching how permissive real-world
// files are about this token.
func parseRole(token string) models.RelationshipRole {
	if strings.HasPrefix(token, "DIRECT") {
		return models.RoleDirect
	}
	return models.RoleReseller
}
