package cli

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/hwdetect"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

func validCategory(category string) bool {
	return selector.IsSelectableCategory(category)
}

func detectProfile() (*hardware.Profile, error) {
	reading, err := hwdetect.Detect()
	if err != nil {
		return nil, err
	}
	return hardware.Normalize(reading.Raw()), nil
}

// buildPool assembles the model pool from the static seed catalog, the
// on-demand enrichment cache, and the local daemon's inventory. A
// daemon that isn't reachable only drops the installed-inventory
// signal; the catalog still yields a usable pool.
func buildPool(client *runtime.Client, now time.Time) ([]*models.ModelVariant, error) {
	seed, err := models.LoadSeedCatalog()
	if err != nil {
		return nil, err
	}
	cached, err := models.LoadCachedCatalog()
	if err != nil {
		logrus.Warnf("cli: catalog cache unreadable, continuing without it: %v", err)
	}
	catalog := append(seed, cached...)

	var installed []models.InstalledModelDescriptor
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	daemonModels, err := client.ListInstalled(ctx)
	if err != nil {
		logrus.Warnf("cli: local inventory unavailable, continuing with catalog only: %v", err)
	} else {
		installed = make([]models.InstalledModelDescriptor, 0, len(daemonModels))
		for _, im := range daemonModels {
			installed = append(installed, convertInstalled(im))
		}
	}

	return models.LoadPool(installed, catalog, now), nil
}

func convertInstalled(im runtime.InstalledModel) models.InstalledModelDescriptor {
	d := models.InstalledModelDescriptor{
		Identifier: im.Identifier,
		Quant:      im.Quant,
		Digest:     im.Digest,
	}
	if im.SizeGB > 0 {
		sizeGB := im.SizeGB
		d.SizeGB = &sizeGB
	}
	if b, ok := models.ParseParamsB(im.ParameterSize); ok {
		d.ParamsB = &b
	} else if b, ok := models.ParseParamsB(im.Identifier); ok {
		d.ParamsB = &b
	}
	return d
}
