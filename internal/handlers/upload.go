package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	jww "github.com/spf13/jwalterweatherman"
)

// MaxUploadSize is the largest accepted attachment.
const MaxUploadSize = 5 * 1024 * 1024

// uploadKind is an attachment category. Each kind is stored in its own
// directory and accepts its own extensions.
type uploadKind struct {
	dir   string
	types map[string]string // extension -> content type
}

var uploadKinds = map[string]uploadKind{
	"image": {
		dir: "images",
		types: map[string]string{
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
			".gif":  "image/gif",
			".webp": "image/webp",
		},
	},
	"file": {
		dir: "files",
		types: map[string]string{
			".pdf":  "application/pdf",
			".doc":  "application/msword",
			".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			".txt":  "text/plain",
			".zip":  "application/zip",
		},
	},
}

func kindByDir(dir string) (uploadKind, bool) {
	for _, k := range uploadKinds {
		if k.dir == dir {
			return k, true
		}
	}
	return uploadKind{}, false
}

// Upload stores a multipart "file" as an attachment of kind :kind (image or
// file) and returns the URL to reference it by, e.g. as a message imageUrl.
func (h *Handler) Upload(c *fiber.Ctx) error {
	kind, ok := uploadKinds[c.Params("kind")]
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid upload type. Must be image or file")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file uploaded")
	}

	if file.Size > MaxUploadSize {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf(
			"File size exceeds limit of 5MB (uploaded: %.2fMB)", float64(file.Size)/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := kind.types[ext]; !ok {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("File extension %q not allowed", ext))
	}

	uploadPath := filepath.Join(h.uploadDir, kind.dir)
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		jww.ERROR.Printf("Failed to create %s: %v", uploadPath, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to create upload directory")
	}

	filename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	if err := c.SaveFile(file, filepath.Join(uploadPath, filename)); err != nil {
		jww.ERROR.Printf("Failed to save upload %s: %v", filename, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to save file")
	}

	jww.INFO.Printf("Stored upload %s/%s (%d bytes)", kind.dir, filename, file.Size)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"url":      "/uploads/" + kind.dir + "/" + filename,
		"filename": file.Filename,
		"size":     file.Size,
	})
}

// GetFile serves a previously uploaded attachment
func (h *Handler) GetFile(c *fiber.Ctx) error {
	kind, ok := kindByDir(c.Params("type"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid file type")
	}

	filename := filepath.Base(c.Params("filename"))
	contentType, ok := kind.types[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return fail(c, fiber.StatusNotFound, "File not found")
	}

	path := filepath.Join(h.uploadDir, kind.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fail(c, fiber.StatusNotFound, "File not found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		jww.ERROR.Printf("Failed to read %s: %v", path, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to open file")
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
