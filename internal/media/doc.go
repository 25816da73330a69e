// Package media embeds SmugMug metadata into downloaded files.
//
// The ExifWriter keeps one exiftool process open for the whole run and
// writes, for each image:
//
//   - IPTC:ObjectName from the item title
//   - IPTC:Caption-Abstract from the caption
//   - IPTC:Keywords and XMP:Subject from the keywords
//
// Originals are overwritten in place. Videos are skipped.
//
//	w, err := media.NewExifWriter()
//	if err != nil {
//	    // exiftool is not installed
//	}
//	defer w.Close()
//
//	err = w.WriteMetadata(item)
package media
