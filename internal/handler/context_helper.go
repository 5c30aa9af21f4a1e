package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/siakad-dev/presensi-kuliah-api/internal/middleware"
	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

// currentClaims pulls the authenticated claims or fails the request.
func currentClaims(c *gin.Context) (*models.JWTClaims, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}

// currentNIM returns the member id of the authenticated student.
func currentNIM(c *gin.Context) (string, error) {
	claims, err := currentClaims(c)
	if err != nil {
		return "", err
	}
	if claims.Role != models.RoleMahasiswa || claims.MemberID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "student account required")
	}
	return claims.MemberID, nil
}

// currentDosenID returns the member id of the authenticated lecturer.
func currentDosenID(c *gin.Context) (string, error) {
	claims, err := currentClaims(c)
	if err != nil {
		return "", err
	}
	if claims.Role != models.RoleDosen || claims.MemberID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "lecturer account required")
	}
	return claims.MemberID, nil
}
