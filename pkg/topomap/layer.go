package topomap

import (
	"fmt"
	"strconv"
	"strings"
)

// LayerID identifies one classification layer of the map container.
//
// The numeric values are the keys used by the container format.
type LayerID int32

const (
	WorldWithoutJapan LayerID = iota
	PrimarySubdivisionArea
	PrefectureForecastArea
	RegionForecastAreaForEew
	PrefectureForecastAreaForEew
	MunicipalityWeatherWarningArea
	MunicipalityEarthquakeTsunamiArea
	BundledMunicipalityArea
	NationalAndRegionForecastArea
	EarthquakeInformationSubdivisionArea
	EarthquakeInformationPrefecture
	TsunamiForecastArea
)

var layerNames = [...]string{
	WorldWithoutJapan:                    "WorldWithoutJapan",
	PrimarySubdivisionArea:               "PrimarySubdivisionArea",
	PrefectureForecastArea:               "PrefectureForecastArea",
	RegionForecastAreaForEew:             "RegionForecastAreaForEew",
	PrefectureForecastAreaForEew:         "PrefectureForecastAreaForEew",
	MunicipalityWeatherWarningArea:       "MunicipalityWeatherWarningArea",
	MunicipalityEarthquakeTsunamiArea:    "MunicipalityEarthquakeTsunamiArea",
	BundledMunicipalityArea:              "BundledMunicipalityArea",
	NationalAndRegionForecastArea:        "NationalAndRegionForecastArea",
	EarthquakeInformationSubdivisionArea: "EarthquakeInformationSubdivisionArea",
	EarthquakeInformationPrefecture:      "EarthquakeInformationPrefecture",
	TsunamiForecastArea:                  "TsunamiForecastArea",
}

var layerDisplayNames = [...]string{
	WorldWithoutJapan:                    "日本以外の全地域",
	PrimarySubdivisionArea:               "一次細分区域等",
	PrefectureForecastArea:               "府県予報区等",
	RegionForecastAreaForEew:             "緊急地震速報／地方予報区",
	PrefectureForecastAreaForEew:         "緊急地震速報／府県予報区",
	MunicipalityWeatherWarningArea:       "市町村等（気象警報等）",
	MunicipalityEarthquakeTsunamiArea:    "市町村等（地震津波関係）",
	BundledMunicipalityArea:              "市町村等をまとめた地域等",
	NationalAndRegionForecastArea:        "全国・地方予報区等",
	EarthquakeInformationSubdivisionArea: "地震情報／細分区域",
	EarthquakeInformationPrefecture:      "地震情報／都道府県等",
	TsunamiForecastArea:                  "津波予報区",
}

// AllLayers returns every known layer in container key order.
func AllLayers() []LayerID {
	out := make([]LayerID, len(layerNames))
	for i := range layerNames {
		out[i] = LayerID(i)
	}
	return out
}

// Valid reports whether l is one of the known layers.
func (l LayerID) Valid() bool {
	return l >= 0 && int(l) < len(layerNames)
}

func (l LayerID) String() string {
	if l.Valid() {
		return layerNames[l]
	}
	return fmt.Sprintf("LayerID(%d)", int32(l))
}

// DisplayName returns the Japanese name of the layer as published with the
// source dataset, or "" for an unknown layer.
func (l LayerID) DisplayName() string {
	if l.Valid() {
		return layerDisplayNames[l]
	}
	return ""
}

// ParseLayerID accepts a layer name (case-insensitive) or its numeric key.
func ParseLayerID(s string) (LayerID, error) {
	s = strings.TrimSpace(s)
	for i, name := range layerNames {
		if strings.EqualFold(name, s) {
			return LayerID(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && LayerID(n).Valid() {
		return LayerID(n), nil
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

// GroupDivisor returns the number a region code of this layer is divided by
// to obtain the code of its parent region. Layers without a parent grouping
// return 1.
//
// Example:
//
//	parent := code / topomap.MunicipalityWeatherWarningArea.GroupDivisor()
func (l LayerID) GroupDivisor() int {
	switch l {
	case PrimarySubdivisionArea, PrefectureForecastArea:
		return 1000
	case MunicipalityWeatherWarningArea, MunicipalityEarthquakeTsunamiArea:
		return 100000
	case BundledMunicipalityArea:
		return 10000
	case EarthquakeInformationSubdivisionArea:
		return 10
	default:
		return 1
	}
}
