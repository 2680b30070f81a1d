package normalizer

// hcmDistrictDict is the frozen Ho Chi Minh district abbreviation
// dictionary from spec §6. Used only once an HCM province context has been
// established, either via hint or via a trailing "q <abbrev>" pattern.
var hcmDistrictDict = map[string]string{
	"tb": "tan binh",
	"gv": "go vap",
	"bt": "binh thanh",
	"td": "thu duc",
	"pn": "phu nhuan",
}

func isHCMHint(provinceHint string) bool {
	h := RemoveAccentsAndLowercase(provinceHint)
	switch h {
	case "ho chi minh", "hcm", "tp ho chi minh", "tp. ho chi minh", "sai gon", "tphcm":
		return true
	}
	return false
}
