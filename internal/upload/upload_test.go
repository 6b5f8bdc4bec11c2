package upload_test

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/upload"
)

func TestUploadStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Upload Store Suite")
}

// Minimal valid headers per format; http.DetectContentType only needs the
// first bytes to sniff these.
var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	pdfHeader = []byte("%PDF-1.7\n")
)

var _ = Describe("Store", func() {
	var (
		store  *upload.Store
		dir    string
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dir = GinkgoT().TempDir()

		var err error
		store, err = upload.NewStore(dir, 1024, 4096, logger)
		Expect(err).ToNot(HaveOccurred())
	})

	It("stores an image under a generated name with a sniffed extension", func() {
		payload := append(append([]byte{}, pngHeader...), make([]byte, 64)...)

		stored, err := store.Save(upload.KindImage, int64(len(payload)), bytes.NewReader(payload))
		Expect(err).ToNot(HaveOccurred())
		Expect(stored.Name).To(HaveSuffix(".png"))
		Expect(stored.ContentType).To(Equal("image/png"))
		Expect(stored.Size).To(Equal(int64(len(payload))))

		onDisk, err := os.ReadFile(stored.Path)
		Expect(err).ToNot(HaveOccurred())
		Expect(onDisk).To(Equal(payload))
	})

	It("stores a pdf asset", func() {
		stored, err := store.Save(upload.KindAsset, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))
		Expect(err).ToNot(HaveOccurred())
		Expect(stored.Name).To(HaveSuffix(".pdf"))
		Expect(stored.ContentType).To(Equal("application/pdf"))
	})

	It("rejects content that sniffs as an unsupported type", func() {
		payload := []byte("just some plain text pretending to be a picture")

		_, err := store.Save(upload.KindImage, int64(len(payload)), bytes.NewReader(payload))
		Expect(err).To(HaveOccurred())

		appErr, ok := err.(*errors.AppError)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(errors.ErrCodeUnsupportedFile))
	})

	It("does not trust the client supplied extension", func() {
		payload := []byte("#!/bin/sh\necho not a pdf\n")

		_, err := store.Save(upload.KindAsset, int64(len(payload)), bytes.NewReader(payload))
		Expect(err).To(HaveOccurred())
	})

	It("rejects oversized uploads before touching disk", func() {
		_, err := store.Save(upload.KindImage, 2048, strings.NewReader(""))
		Expect(err).To(HaveOccurred())

		appErr, ok := err.(*errors.AppError)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(errors.ErrCodeFileTooLarge))

		entries, err := os.ReadDir(dir + "/image")
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("removes the file when the stream exceeds the declared size", func() {
		payload := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)

		// declared size fits the cap, the actual stream does not
		_, err := store.Save(upload.KindImage, 512, bytes.NewReader(payload))
		Expect(err).To(HaveOccurred())

		appErr, ok := err.(*errors.AppError)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(errors.ErrCodeFileTooLarge))

		entries, err := os.ReadDir(dir + "/image")
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("opens a stored file for streaming", func() {
		stored, err := store.Save(upload.KindAsset, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))
		Expect(err).ToNot(HaveOccurred())

		f, info, err := store.Open(stored.Path)
		Expect(err).ToNot(HaveOccurred())
		defer f.Close()
		Expect(info.Size()).To(Equal(stored.Size))
	})
})
