package ofx

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// signatureWindow is how far into the file the OFX markers are searched.
const signatureWindow = 1024

var xmlEncoding = regexp.MustCompile(`(?i)<\?xml[^>]*encoding=["']([^"']+)["']`)

// hasSignature reports whether data looks like an OFX document: an OFX 1.x
// colon header, an OFX 2.x processing instruction or a bare <OFX> root.
func hasSignature(data []byte) bool {
	head := data
	if len(head) > signatureWindow {
		head = head[:signatureWindow]
	}

	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	head = bytes.ToUpper(bytes.TrimSpace(head))

	return bytes.HasPrefix(head, []byte("OFXHEADER:")) ||
		bytes.Contains(head, []byte("<?OFX")) ||
		bytes.Contains(head, []byte("<OFX>"))
}

// declaredCharset reads the character set announced by the file, if any.
// OFX 1.x uses ENCODING (USASCII, UTF-8) and CHARSET (1252, ISOLATIN1 ...)
// header lines; OFX 2.x uses the XML declaration.
func declaredCharset(data []byte) string {
	head := data
	if len(head) > signatureWindow {
		head = head[:signatureWindow]
	}

	if m := xmlEncoding.FindSubmatch(head); m != nil {
		return string(m[1])
	}

	var encoding, charset string

	sc := bufio.NewScanner(bytes.NewReader(head))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "<") {
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "ENCODING":
			encoding = strings.ToUpper(strings.TrimSpace(value))
		case "CHARSET":
			charset = strings.ToUpper(strings.TrimSpace(value))
		}
	}

	if encoding == "UTF-8" || encoding == "UNICODE" {
		return "UTF-8"
	}

	if charset == "ISOLATIN1" {
		return "ISO-8859-1"
	}

	if charset == "NONE" {
		return ""
	}

	return charset
}
