package engine

import (
	"bytes"
	"fmt"
	"sort"

	"pdf-webhook/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func configuration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password
	return conf
}

// readStructure parses, validates and optimizes data. Optimization populates
// the per-page image tables image extraction relies on.
func readStructure(data []byte, password string) (ctx *model.Context, err error) {
	err = guard("pdfcpu read", func() error {
		var err error
		ctx, err = api.ReadValidateAndOptimize(bytes.NewReader(data), configuration(password))
		return err
	})
	return ctx, err
}

// decrypt returns data with its encryption removed
func decrypt(data []byte, password string) ([]byte, error) {
	var buf bytes.Buffer
	err := guard("pdfcpu decrypt", func() error {
		return api.Decrypt(bytes.NewReader(data), &buf, configuration(password))
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func structureMetadata(ctx *model.Context) map[string]string {
	return map[string]string{
		domain.MetaTitle:        ctx.XRefTable.Title,
		domain.MetaAuthor:       ctx.XRefTable.Author,
		domain.MetaSubject:      ctx.XRefTable.Subject,
		domain.MetaCreator:      ctx.XRefTable.Creator,
		domain.MetaProducer:     ctx.XRefTable.Producer,
		domain.MetaCreationDate: ctx.XRefTable.CreationDate,
		domain.MetaModDate:      ctx.XRefTable.ModDate,
	}
}

func imageRefs(page int, imgs map[int]model.Image) []domain.ImageRef {
	objNrs := make([]int, 0, len(imgs))
	for objNr := range imgs {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	refs := make([]domain.ImageRef, 0, len(objNrs))
	for i, objNr := range objNrs {
		img := imgs[objNr]
		refs = append(refs, domain.ImageRef{
			Page:         page,
			Index:        i,
			ObjectNumber: objNr,
			Components:   img.Comp,
			Width:        img.Width,
			Height:       img.Height,
			Format:       img.FileType,
		})
	}
	return refs
}

// guard runs fn and converts a panic from the underlying parser into an error.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", op, r)
		}
	}()
	return fn()
}
