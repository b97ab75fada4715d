// Package capfile reads the metadata of converted card archives (CAP files).
//
// A CAP file is a zip container. Its components live under
// <package/path>/javacard/<Component>.cap, each one a tag byte, a big-endian
// u2 size and the component body.
package capfile

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/goplus/jcbuild/pkgs/aid"
)

// Component tags.
const (
	TagHeader       = 1
	TagDirectory    = 2
	TagApplet       = 3
	TagImport       = 4
	TagConstantPool = 5
	TagClass        = 6
	TagMethod       = 7
	TagStaticField  = 8
	TagRefLocation  = 9
	TagExport       = 10
	TagDescriptor   = 11
	TagDebug        = 12
)

// Header flags.
const (
	FlagInt    = 0x01
	FlagExport = 0x02
	FlagApplet = 0x04
)

const headerMagic = 0xDECAFFED

// loadFileOrder is the order in which components form the load file data
// block. Descriptor and Debug are not loaded to the card.
var loadFileOrder = []string{
	"Header", "Directory", "Import", "Applet", "Class", "Method",
	"StaticField", "Export", "ConstantPool", "RefLocation",
}

var ErrNotCAP = errors.New("not a CAP file")

// Package identifies a package by AID and version.
type Package struct {
	AID   aid.AID
	Major int
	Minor int
}

// VersionString returns "major.minor".
func (p Package) VersionString() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// File is a parsed CAP file.
type File struct {
	FormatMajor int
	FormatMinor int
	Flags       int

	Package     Package
	PackageName string // dotted

	AppletAIDs []aid.AID
	Imports    []Package

	components map[string][]byte // by component name, raw including tag and size
}

// Open reads and parses the CAP file at name.
func Open(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses the raw bytes of a CAP file.
func Parse(data []byte) (*File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCAP, err)
	}

	f := &File{components: make(map[string][]byte)}
	var pkgDir string
	for _, zf := range zr.File {
		dir, base := path.Split(zf.Name)
		if !strings.HasSuffix(dir, "javacard/") || !strings.HasSuffix(base, ".cap") {
			continue
		}
		b, err := readZipFile(zf)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", zf.Name, err)
		}
		f.components[strings.TrimSuffix(base, ".cap")] = b
		pkgDir = strings.TrimSuffix(dir, "javacard/")
	}

	header, ok := f.components["Header"]
	if !ok {
		return nil, fmt.Errorf("%w: no Header component", ErrNotCAP)
	}
	if err := f.parseHeader(header); err != nil {
		return nil, err
	}
	if f.PackageName == "" {
		f.PackageName = strings.ReplaceAll(strings.Trim(pkgDir, "/"), "/", ".")
	}
	if b, ok := f.components["Applet"]; ok {
		if err := f.parseApplets(b); err != nil {
			return nil, err
		}
	}
	if b, ok := f.components["Import"]; ok {
		if err := f.parseImports(b); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// HasFlag reports whether the header carries flag.
func (f *File) HasFlag(flag int) bool {
	return f.Flags&flag != 0
}

// FlagNames returns the names of the header flags that are set: "int",
// "exports", "applets".
func (f *File) FlagNames() []string {
	var names []string
	if f.HasFlag(FlagInt) {
		names = append(names, "int")
	}
	if f.HasFlag(FlagExport) {
		names = append(names, "exports")
	}
	if f.HasFlag(FlagApplet) {
		names = append(names, "applets")
	}
	return names
}

// LoadFileData returns the concatenated components that are loaded to a
// card.
func (f *File) LoadFileData() []byte {
	var buf bytes.Buffer
	for _, name := range loadFileOrder {
		buf.Write(f.components[name])
	}
	return buf.Bytes()
}

// LoadFileDataHash returns the SHA-256 digest of LoadFileData.
func (f *File) LoadFileDataHash() digest.Digest {
	return digest.SHA256.FromBytes(f.LoadFileData())
}

// frameworkAID is the AID of javacard.framework.
var frameworkAID = aid.AID{0xA0, 0x00, 0x00, 0x00, 0x62, 0x01, 0x01}

// globalPlatformAID is the AID of org.globalplatform.
var globalPlatformAID = aid.AID{0xA0, 0x00, 0x00, 0x01, 0x51, 0x00}

var frameworkVersions = map[string]string{
	"1.0": "2.1.1",
	"1.1": "2.1.2",
	"1.2": "2.2.1",
	"1.3": "2.2.2",
	"1.4": "3.0.1",
	"1.5": "3.0.4",
	"1.6": "3.0.5",
	"1.8": "3.1.0",
}

var globalPlatformVersions = map[string]string{
	"1.0": "2.1.1",
	"1.1": "2.2",
	"1.2": "2.2",
	"1.3": "2.2.1",
	"1.5": "2.2.1",
	"1.6": "2.3",
	"1.7": "2.3.1",
}

// GuessJavaCardVersion guesses the platform version the package was built
// for from the imported javacard.framework version.
func (f *File) GuessJavaCardVersion() (string, bool) {
	return f.guess(frameworkAID, frameworkVersions)
}

// GuessGlobalPlatformVersion guesses the GlobalPlatform API version from the
// imported org.globalplatform version.
func (f *File) GuessGlobalPlatformVersion() (string, bool) {
	return f.guess(globalPlatformAID, globalPlatformVersions)
}

func (f *File) guess(pkg aid.AID, table map[string]string) (string, bool) {
	for _, imp := range f.Imports {
		if imp.AID.Equal(pkg) {
			v, ok := table[imp.VersionString()]
			return v, ok
		}
	}
	return "", false
}

func (f *File) parseHeader(b []byte) error {
	r, err := body(b, TagHeader)
	if err != nil {
		return err
	}
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return fmt.Errorf("%w: short header", ErrNotCAP)
	}
	if magic != headerMagic {
		return fmt.Errorf("%w: bad magic %08X", ErrNotCAP, magic)
	}
	hdr := make([]byte, 3)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return fmt.Errorf("%w: short header", ErrNotCAP)
	}
	f.FormatMinor, f.FormatMajor, f.Flags = int(hdr[0]), int(hdr[1]), int(hdr[2])

	if f.Package, err = readPackage(r); err != nil {
		return fmt.Errorf("%w: header package: %v", ErrNotCAP, err)
	}

	// Package names appear from format 2.2 on.
	if f.FormatMajor > 2 || (f.FormatMajor == 2 && f.FormatMinor >= 2) {
		name, err := readLV(r)
		if err == nil && len(name) > 0 {
			f.PackageName = strings.ReplaceAll(string(name), "/", ".")
		}
	}
	return nil
}

func (f *File) parseApplets(b []byte) error {
	r, err := body(b, TagApplet)
	if err != nil {
		return err
	}
	n, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: short applet component", ErrNotCAP)
	}
	for i := 0; i < int(n); i++ {
		id, err := readLV(r)
		if err != nil {
			return fmt.Errorf("%w: applet %d: %v", ErrNotCAP, i, err)
		}
		var offset uint16
		if err := binary.Read(r, binary.BigEndian, &offset); err != nil {
			return fmt.Errorf("%w: applet %d: %v", ErrNotCAP, i, err)
		}
		f.AppletAIDs = append(f.AppletAIDs, aid.AID(id))
	}
	return nil
}

func (f *File) parseImports(b []byte) error {
	r, err := body(b, TagImport)
	if err != nil {
		return err
	}
	n, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: short import component", ErrNotCAP)
	}
	for i := 0; i < int(n); i++ {
		p, err := readPackage(r)
		if err != nil {
			return fmt.Errorf("%w: import %d: %v", ErrNotCAP, i, err)
		}
		f.Imports = append(f.Imports, p)
	}
	return nil
}

// body checks the tag and size of a component and returns a reader over its
// info bytes.
func body(b []byte, tag byte) (*bytes.Reader, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("%w: component %d too short", ErrNotCAP, tag)
	}
	if b[0] != tag {
		return nil, fmt.Errorf("%w: component tag %d, want %d", ErrNotCAP, b[0], tag)
	}
	size := int(binary.BigEndian.Uint16(b[1:3]))
	if len(b)-3 < size {
		return nil, fmt.Errorf("%w: component %d truncated", ErrNotCAP, tag)
	}
	return bytes.NewReader(b[3 : 3+size]), nil
}

func readPackage(r *bytes.Reader) (Package, error) {
	var p Package
	vers := make([]byte, 2)
	if _, err := io.ReadFull(r, vers); err != nil {
		return p, err
	}
	id, err := readLV(r)
	if err != nil {
		return p, err
	}
	p.Minor, p.Major, p.AID = int(vers[0]), int(vers[1]), aid.AID(id)
	return p, nil
}

func readLV(r *bytes.Reader) ([]byte, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
