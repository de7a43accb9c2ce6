package core

// Field tables for the metadata formats the index consumes. Keys not
// listed here are kept as unknown and reported as warnings.

var srcinfoArchSpecific = map[string]struct{}{
	"depends":      {},
	"makedepends":  {},
	"checkdepends": {},
	"optdepends":   {},
	"provides":     {},
	"conflicts":    {},
	"replaces":     {},
	"source":       {},
	"md5sums":      {},
	"sha1sums":     {},
	"sha224sums":   {},
	"sha256sums":   {},
	"sha384sums":   {},
	"sha512sums":   {},
	"b2sums":       {},
	"cksums":       {},
}

var SrcinfoFields = NewFieldTable(
	[]string{
		"pkgbase", "pkgname", "pkgdesc", "pkgver", "pkgrel", "epoch",
		"url", "install", "changelog",
	},
	[]string{
		"arch", "license", "groups", "depends", "makedepends",
		"checkdepends", "optdepends", "provides", "conflicts", "replaces",
		"backup", "noextract", "validpgpkeys",
	},
	[]string{
		"source", "md5sums", "sha1sums", "sha224sums", "sha256sums",
		"sha384sums", "sha512sums", "b2sums", "cksums", "options",
	},
)

var PkginfoFields = NewFieldTable(
	[]string{
		"pkgname", "pkgbase", "pkgver", "pkgdesc", "url", "builddate",
		"packager", "size", "arch",
	},
	[]string{
		"license", "replaces", "group", "conflict", "provides", "backup",
		"depend", "optdepend", "makedepend", "checkdepend", "xdata",
	},
	nil,
)

var BuildinfoFields = NewFieldTable(
	[]string{
		"format", "pkgname", "pkgbase", "pkgver", "pkgarch",
		"pkgbuild_sha256sum", "packager", "builddate", "builddir",
		"startdir", "buildtool", "buildtoolver",
	},
	nil,
	[]string{"buildenv", "options", "installed"},
)

var DescFields = NewFieldTable(
	[]string{
		"FILENAME", "NAME", "BASE", "VERSION", "DESC", "CSIZE", "ISIZE",
		"MD5SUM", "SHA256SUM", "PGPSIG", "URL", "ARCH", "BUILDDATE",
		"PACKAGER",
	},
	[]string{
		"LICENSE", "GROUPS", "DEPENDS", "MAKEDEPENDS", "CHECKDEPENDS",
		"OPTDEPENDS", "PROVIDES", "CONFLICTS", "REPLACES",
	},
	[]string{"FILES"},
)
