package domain

import "strings"

const (
	BaseTypeInstallation = "Instalação"
	BaseTypeMaintenance  = "Manutenção"
	BaseTypeDisconnect   = "Desconexão"
	BaseTypeOther        = "Outros"
)

// BaseTypes lists the operational bases of each base type.
var BaseTypes = map[string][]string{
	BaseTypeInstallation: {
		"BASE BAURU", "BASE BOTUCATU", "BASE CAMPINAS", "BASE LIMEIRA",
		"BASE PAULINIA", "BASE PIRACICABA", "BASE RIBEIRAO PRETO",
		"BASE SAO JOSE DO RIO PRETO", "BASE SOROCABA", "BASE SUMARE",
		"GPON BAURU", "GPON RIBEIRAO PRETO",
	},
	BaseTypeMaintenance: {
		"BASE ARARAS VT", "BASE BOTUCATU VT", "BASE MDU ARARAS",
		"BASE MDU BAURU", "BASE MDU MOGI", "BASE MDU PIRACICABA",
		"BASE MDU SJRP", "BASE PIRACICABA VT", "BASE RIBEIRÃO VT",
		"BASE SERTAOZINHO VT", "BASE SUMARE VT", "BASE VAR BAURU",
		"BASE VAR PIRACICABA", "BASE VAR SUMARE",
	},
	BaseTypeDisconnect: {
		"DESCONEXAO", "DESCONEXÃO BOTUCATU", "DESCONEXÃO CAMPINAS",
		"DESCONEXAO RIBEIRAO PRETO",
	},
}

var baseTypeIndex = func() map[string]string {
	idx := make(map[string]string)
	for baseType, bases := range BaseTypes {
		for _, b := range bases {
			idx[b] = baseType
		}
	}
	return idx
}()

// ClassifyBase returns the base type of an operational base, or
// BaseTypeOther for unknown bases. Matching ignores surrounding whitespace
// and letter case.
func ClassifyBase(base string) string {
	if t, ok := baseTypeIndex[strings.ToUpper(strings.TrimSpace(base))]; ok {
		return t
	}
	return BaseTypeOther
}
