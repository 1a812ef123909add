package catalog

import (
	"tagshelf/internal/errors"
	"tagshelf/internal/log"
	"tagshelf/internal/sidecar"
	"tagshelf/pkg/types"
)

// AddTag adds tag to the image at addr
func (c *Catalog) AddTag(addr types.Address, tag string) error {
	_, err := c.AddValue(addr, types.Tags, tag)
	return err
}

// RemoveTag removes tag from the image at addr
func (c *Catalog) RemoveTag(addr types.Address, tag string) error {
	_, err := c.RemoveValue(addr, types.Tags, tag)
	return err
}

// AddArtist adds artist to the image at addr
func (c *Catalog) AddArtist(addr types.Address, artist string) error {
	_, err := c.AddValue(addr, types.Artists, artist)
	return err
}

// RemoveArtist removes artist from the image at addr
func (c *Catalog) RemoveArtist(addr types.Address, artist string) error {
	_, err := c.RemoveValue(addr, types.Artists, artist)
	return err
}

// AddLink adds a source link to the image at addr
func (c *Catalog) AddLink(addr types.Address, link string) error {
	_, err := c.AddValue(addr, types.Links, link)
	return err
}

// RemoveLink removes a source link from the image at addr
func (c *Catalog) RemoveLink(addr types.Address, link string) error {
	_, err := c.RemoveValue(addr, types.Links, link)
	return err
}

// AddValue inserts value into a set-valued field, writes the whole field back
// to the file and updates the index. It reports whether the field changed.
// The in-memory edit stands even when the write is not confirmed.
func (c *Catalog) AddValue(addr types.Address, field types.Field, value string) (bool, error) {
	img, err := c.editable(addr, field)
	if err != nil {
		return false, err
	}
	term, changed := img.add(field, value)
	if !changed {
		return false, nil
	}
	if field.Searchable() {
		c.index.Add(term, addr)
	}
	c.writeField(img, field)
	return true, nil
}

// RemoveValue deletes value from a set-valued field, writes the field back
// and updates the index. It reports whether the field changed.
func (c *Catalog) RemoveValue(addr types.Address, field types.Field, value string) (bool, error) {
	img, err := c.editable(addr, field)
	if err != nil {
		return false, err
	}
	term, changed := img.remove(field, value)
	if !changed {
		return false, nil
	}
	// an artist and a tag can share a term
	if field.Searchable() && !img.hasTerm(term) {
		c.index.Remove(term, addr)
	}
	c.writeField(img, field)
	return true, nil
}

// SetNotes replaces the notes of the image at addr
func (c *Catalog) SetNotes(addr types.Address, notes string) error {
	img, err := c.Image(addr)
	if err != nil {
		return err
	}
	img.Notes = notes
	c.write(img.Path, types.Notes, `"`+escapeNotes(notes)+`"`)
	return nil
}

func (c *Catalog) editable(addr types.Address, field types.Field) (*Image, error) {
	img, err := c.Image(addr)
	if err != nil {
		return nil, err
	}
	if field == types.Notes {
		return nil, errors.Newf("%s is not a list field", field)
	}
	return img, nil
}

func (c *Catalog) writeField(img *Image, field types.Field) {
	c.write(img.Path, field, encodeList(img.Values(field)))
}

func (c *Catalog) write(path string, field types.Field, value string) {
	attr := sidecar.Attribute(field)
	if c.onWrite != nil {
		c.onWrite(path)
	}
	response, err := c.sidecar.Submit(sidecar.WriteFieldArgs(attr, value, path))
	if err == nil && !sidecar.WriteConfirmed(response) {
		err = errors.Newf("unexpected sidecar response: %q", response)
	}
	if err != nil {
		werr := errors.NewWriteError(path, attr, err)
		c.writeErrs = append(c.writeErrs, werr)
		log.LogWithError(werr).Warn("Field write not confirmed")
		return
	}
	c.logger.With(log.F("path", path), log.F("field", attr)).Debug("Field written")
}

// WriteErrors returns the unconfirmed writes since the last call and clears
// the list.
func (c *Catalog) WriteErrors() []error {
	errs := c.writeErrs
	c.writeErrs = nil
	return errs
}
