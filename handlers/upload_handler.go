package handlers

import (
	"fmt"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/gofiber/fiber/v2"
)

type uploadSigner interface {
	SignUpload(folder string) (*services.UploadSignature, error)
}

type UploadHandler struct {
	signer uploadSigner
	folder string
}

// NewUploadHandler accepts a nil signer when Cloudinary is not configured.
func NewUploadHandler(signer uploadSigner, folder string) *UploadHandler {
	return &UploadHandler{signer: signer, folder: folder}
}

// Signature creates a signature for a direct frontend upload to Cloudinary.
func (h *UploadHandler) Signature(c *fiber.Ctx) error {
	if h.signer == nil {
		return respondError(c, fmt.Errorf("%w: uploads are disabled", models.ErrNotConfigured))
	}

	sig, err := h.signer.SignUpload(h.folder)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sig)
}
