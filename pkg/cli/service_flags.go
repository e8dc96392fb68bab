package cli

import (
	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/klothoplatform/warmup/pkg/warmer"
	"github.com/spf13/cobra"
)

type serviceFlags struct {
	path   string
	stage  string
	region string
}

func (f *serviceFlags) register(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVarP(&f.path, "config", "c", "serverless.yml", "Path to the service definition")
	flags.StringVarP(&f.stage, "stage", "s", "", "Stage, overriding provider.stage")
	flags.StringVarP(&f.region, "region", "r", "", "Region, overriding provider.region")
}

func (f *serviceFlags) load() (*service.Service, error) {
	svc, err := service.Load(f.path)
	if err != nil {
		return nil, err
	}
	if f.stage != "" {
		svc.Provider.Stage = f.stage
	}
	if f.region != "" {
		svc.Provider.Region = f.region
	}
	return svc, nil
}

func (f *serviceFlags) plugin() (*warmer.Plugin, error) {
	svc, err := f.load()
	if err != nil {
		return nil, err
	}
	return warmer.NewPlugin(svc)
}
