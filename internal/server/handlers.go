package server

import (
	"errors"
	"net/http"

	"lemonbi/storefront/internal/catalog"
	"lemonbi/storefront/internal/erp"
	"lemonbi/storefront/internal/repository"
	"lemonbi/storefront/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// storefrontResponse is the public settings snapshot; credentials and any
// other private tenant fields never leave the service.
type storefrontResponse struct {
	Code              string   `json:"code"`
	TradeName         string   `json:"trade_name"`
	LogoURL           string   `json:"logo_url,omitempty"`
	PrimaryColor      string   `json:"primary_color"`
	SecondaryColor    string   `json:"secondary_color"`
	AccentColor       string   `json:"accent_color"`
	StoreCategory     string   `json:"store_category"`
	WhatsappNumbers   string   `json:"whatsapp_numbers,omitempty"`
	FooterDescription string   `json:"footer_description,omitempty"`
	SupportText       string   `json:"support_text,omitempty"`
	QualityText       string   `json:"quality_text,omitempty"`
	SocialLinks       []string `json:"social_links,omitempty"`
}

func (s *Server) getStorefront(c *gin.Context) {
	tenant, err := s.service.Storefront(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	resp := storefrontResponse{
		Code:              tenant.Code,
		TradeName:         tenant.TradeName,
		LogoURL:           tenant.LogoURL,
		PrimaryColor:      tenant.PrimaryColor,
		SecondaryColor:    tenant.SecondaryColor,
		AccentColor:       tenant.AccentColor,
		StoreCategory:     tenant.StoreCategory,
		WhatsappNumbers:   tenant.WhatsappNumbers,
		FooterDescription: tenant.FooterDescription,
		SupportText:       tenant.SupportText,
		QualityText:       tenant.QualityText,
	}
	for _, link := range []string{tenant.FacebookURL, tenant.InstagramURL, tenant.TiktokURL} {
		if link != "" {
			resp.SocialLinks = append(resp.SocialLinks, link)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// getCatalog returns the visibility-filtered catalog. An empty catalog is a
// 200 with an empty list; storefronts must render it as "no products",
// which is distinct from an upstream error.
func (s *Server) getCatalog(c *gin.Context) {
	products, err := s.service.Catalog(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

func (s *Server) listTenants(c *gin.Context) {
	tenants, err := s.service.Tenants(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (s *Server) getTenantStatus(c *gin.Context) {
	status, err := s.service.FetchStatus(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if status == nil {
		c.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) checkTenants(c *gin.Context) {
	checks, err := s.service.CheckAll(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checks": checks})
}

func (s *Server) renderError(c *gin.Context, err error) {
	var fetchErr *catalog.FetchError

	switch {
	case errors.Is(err, repository.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
	case errors.Is(err, service.ErrStoreDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": "storefront not available"})
	case erp.IsAuthError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "erp_auth_failed"})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fetchErr.Error(), "code": "erp_fetch_failed"})
	default:
		log.Errorf("Unhandled API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
