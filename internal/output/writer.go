package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/models"
	"github.com/AlmaLinux/alma-sbom/internal/signer"
	"github.com/AlmaLinux/alma-sbom/internal/utils"
)

const (
	// Stdout is the destination name for standard output
	Stdout = "-"

	signatureSuffix = ".asc"
	publicKeySuffix = ".pub"
)

// Writer writes documents to their destination
type Writer struct {
	path   string
	signer signer.Signer
	stdout io.Writer
}

// NewWriter creates a writer for path. A nil signer disables signing.
func NewWriter(path string, s signer.Signer) (*Writer, error) {
	if path == "" {
		path = Stdout
	}
	if s != nil && path == Stdout {
		return nil, models.NewError(models.ErrInvalidConfig, "output", fmt.Errorf("signing requires an output file"))
	}
	return &Writer{path: path, signer: s, stdout: os.Stdout}, nil
}

// Path returns the destination path, "-" for standard output
func (w *Writer) Path() string {
	return w.path
}

// SignaturePath returns where the detached signature goes, empty when unsigned
func (w *Writer) SignaturePath() string {
	if w.signer == nil {
		return ""
	}
	return w.path + signatureSuffix
}

// PublicKeyPath returns where the armored public key that verifies the
// signature goes, empty when unsigned
func (w *Writer) PublicKeyPath() string {
	if w.signer == nil {
		return ""
	}
	return w.path + publicKeySuffix
}

// Write serializes doc to the destination, compressing it when the file name
// asks for it, and signs the written file. A signed document gets its
// public key written next to the signature.
func (w *Writer) Write(doc formats.Document) error {
	if w.path == Stdout {
		if err := doc.Write(w.stdout); err != nil {
			return models.NewError(models.ErrOutput, "stdout", err)
		}
		return nil
	}

	if err := w.writeFile(doc); err != nil {
		return models.NewError(models.ErrOutput, w.path, err)
	}
	logrus.Infof("SBOM written to %s", w.path)

	if w.signer == nil {
		return nil
	}
	if err := w.sign(); err != nil {
		return models.NewError(models.ErrOutput, w.SignaturePath(), err)
	}
	logrus.Infof("Signature written to %s", w.SignaturePath())

	if err := w.exportPublicKey(); err != nil {
		return models.NewError(models.ErrOutput, w.PublicKeyPath(), err)
	}
	logrus.Debugf("Public key written to %s", w.PublicKeyPath())
	return nil
}

func (w *Writer) writeFile(doc formats.Document) error {
	f, err := utils.CreateFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	cw, err := utils.NewCompressWriter(f, utils.CompressionFor(w.path))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	if err := doc.Write(cw); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to flush compressor: %w", err)
	}
	return f.Close()
}

func (w *Writer) sign() error {
	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer f.Close()

	sig, err := w.signer.SignDetached(f)
	if err != nil {
		return err
	}
	return utils.WriteFile(w.SignaturePath(), sig, 0644)
}

func (w *Writer) exportPublicKey() error {
	key, err := w.signer.PublicKey()
	if err != nil {
		return err
	}
	return utils.WriteFile(w.PublicKeyPath(), key, 0644)
}
